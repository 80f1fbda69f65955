package asset

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/kevinburke/nacl"
	"github.com/kevinburke/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const saltLen = 16

// makeEncryptionKey loads a nacl.Key using a cryptographic key generated from
// the provided passphrase and salt via scrypt.Key.
func makeEncryptionKey(pass, salt []byte) (nacl.Key, error) {
	const N, r, p, keyLength = 1 << 15, 8, 1, 32
	keyBytes, err := scrypt.Key(pass, salt, N, r, p, keyLength)
	if err != nil {
		return nil, err
	}
	return nacl.Load(hex.EncodeToString(keyBytes))
}

// EncryptData encrypts the provided data with the provided passphrase. The
// random salt used to derive the key is prefixed to the returned bytes.
func EncryptData(data, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("unable to generate salt: %w", err)
	}
	key, err := makeEncryptionKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return append(salt, secretbox.EasySeal(data, key)...), nil
}

// DecryptData uses the provided passphrase to decrypt data produced by
// EncryptData.
func DecryptData(data, passphrase []byte) ([]byte, error) {
	if len(data) <= saltLen {
		return nil, ErrCorruptData
	}
	key, err := makeEncryptionKey(passphrase, data[:saltLen])
	if err != nil {
		return nil, err
	}

	decryptedData, err := secretbox.EasyOpen(data[saltLen:], key)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}

	return decryptedData, nil
}

// ReEncryptData decrypts the provided data using the oldPass and re-encrypts
// the data using newPass.
func ReEncryptData(data, oldPass, newPass []byte) ([]byte, error) {
	data, err := DecryptData(data, oldPass)
	if err != nil {
		return nil, err
	}
	return EncryptData(data, newPass)
}
