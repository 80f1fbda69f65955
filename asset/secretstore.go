package asset

import (
	"fmt"
	"sync"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/walletdata"
)

const (
	seedWordsDBKey = "seedWords"
	seedTypeDBKey  = "seedType"
)

// SecretStore persists the wallet seed encrypted with a passphrase. Words and
// type tag are encrypted separately and written under their own keys.
type SecretStore struct {
	db  walletdata.SecretsDB
	log slog.Logger

	mtx  sync.Mutex
	pass []byte
	// seed caches the last written or read seed so a read after a write in
	// the same process never depends on the db round trip.
	seed *Seed
}

// NewSecretStore returns a SecretStore that encrypts secrets with pass and
// saves them to db.
func NewSecretStore(db walletdata.SecretsDB, pass []byte, log slog.Logger) *SecretStore {
	p := make([]byte, len(pass))
	copy(p, pass)
	return &SecretStore{
		db:   db,
		log:  log,
		pass: p,
	}
}

// Write encrypts and saves the seed, overwriting any previous seed.
func (s *SecretStore) Write(seed *Seed) error {
	if seed == nil || seed.Type.WordCount() != len(seed.Words) {
		return fmt.Errorf("%w: cannot save an incomplete seed", ErrInvalidWordCount)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	encWords, err := EncryptData([]byte(seed.Mnemonic()), s.pass)
	if err != nil {
		return fmt.Errorf("seed encryption error: %v", err)
	}
	encType, err := EncryptData([]byte(seed.Type.String()), s.pass)
	if err != nil {
		return fmt.Errorf("seed type encryption error: %v", err)
	}

	if err := s.db.SaveSecret(seedWordsDBKey, encWords); err != nil {
		return fmt.Errorf("error saving %s to db: %v", seedWordsDBKey, err)
	}
	if err := s.db.SaveSecret(seedTypeDBKey, encType); err != nil {
		return fmt.Errorf("error saving %s to db: %v", seedTypeDBKey, err)
	}

	s.seed = copySeed(seed)
	return nil
}

// Read returns the saved seed. The second return value is false if no seed is
// saved or the saved data cannot be decrypted and parsed. Partial or corrupt
// data is treated as no seed.
func (s *SecretStore) Read() (*Seed, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.seed != nil {
		return copySeed(s.seed), true
	}

	words, ok := s.readSecret(seedWordsDBKey)
	if !ok {
		return nil, false
	}
	tag, ok := s.readSecret(seedTypeDBKey)
	if !ok {
		return nil, false
	}

	seedType, err := ParseSeedType(string(tag))
	if err != nil {
		s.log.Errorf("Saved seed type is unusable: %v", err)
		return nil, false
	}
	seed, err := NewSeed(SplitMnemonic(string(words)), seedType)
	if err != nil {
		s.log.Errorf("Saved seed is unusable: %v", err)
		return nil, false
	}

	s.seed = seed
	return copySeed(seed), true
}

func (s *SecretStore) readSecret(key string) ([]byte, bool) {
	enc, err := s.db.ReadSecret(key)
	if err != nil {
		if !walletdata.IsNotFound(err) {
			s.log.Errorf("db.ReadSecret(%s) error: %v", key, err)
		}
		return nil, false
	}
	data, err := DecryptData(enc, s.pass)
	if err != nil {
		s.log.Errorf("Unable to decrypt %s: %v", key, err)
		return nil, false
	}
	return data, true
}

// Erase deletes the saved seed.
func (s *SecretStore) Erase() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.seed = nil
	if err := s.db.DeleteSecret(seedWordsDBKey); err != nil {
		return fmt.Errorf("error deleting %s from db: %v", seedWordsDBKey, err)
	}
	if err := s.db.DeleteSecret(seedTypeDBKey); err != nil {
		return fmt.Errorf("error deleting %s from db: %v", seedTypeDBKey, err)
	}
	return nil
}

// ChangePassphrase re-encrypts the saved seed with newPass.
func (s *SecretStore) ChangePassphrase(oldPass, newPass []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	reEncrypted := make(map[string][]byte, 2)
	for _, key := range []string{seedWordsDBKey, seedTypeDBKey} {
		enc, err := s.db.ReadSecret(key)
		if walletdata.IsNotFound(err) {
			continue
		}
		if err != nil {
			s.log.Errorf("db.ReadSecret(%s) error: %v", key, err)
			return fmt.Errorf("database error")
		}
		if reEncrypted[key], err = ReEncryptData(enc, oldPass, newPass); err != nil {
			return err
		}
	}

	for key, enc := range reEncrypted {
		if err := s.db.SaveSecret(key, enc); err != nil {
			s.log.Errorf("db.SaveSecret(%s) error: %v", key, err)
			return fmt.Errorf("database error")
		}
	}

	s.pass = make([]byte, len(newPass))
	copy(s.pass, newPass)
	return nil
}

func copySeed(seed *Seed) *Seed {
	words := make([]string, len(seed.Words))
	copy(words, seed.Words)
	return &Seed{Words: words, Type: seed.Type}
}
