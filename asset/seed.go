package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedType identifies the mnemonic scheme of a wallet seed.
type SeedType uint8

const (
	// SeedTypeElectrum25 is the legacy 25-word electrum-style seed.
	SeedTypeElectrum25 SeedType = iota + 1
	// SeedTypeBIP39 is a standard 24-word BIP39 seed.
	SeedTypeBIP39
)

const (
	electrumWordCount = 25
	bip39WordCount    = 24
)

var (
	ErrInvalidWordCount = errors.New("invalid seed word count")
	ErrUnknownSeedType  = errors.New("unknown seed type")
)

// String returns the tag persisted for the seed type.
func (t SeedType) String() string {
	switch t {
	case SeedTypeElectrum25:
		return "ELECTRUM_25"
	case SeedTypeBIP39:
		return "BIP39_24"
	}
	return ""
}

// WordCount is the exact number of words a seed of this type has.
func (t SeedType) WordCount() int {
	switch t {
	case SeedTypeElectrum25:
		return electrumWordCount
	case SeedTypeBIP39:
		return bip39WordCount
	}
	return 0
}

// ParseSeedType parses a persisted seed type tag.
func ParseSeedType(tag string) (SeedType, error) {
	switch tag {
	case "ELECTRUM_25":
		return SeedTypeElectrum25, nil
	case "BIP39_24":
		return SeedTypeBIP39, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeedType, tag)
}

// SeedTypeForWordCount infers the seed type from the number of words. Only
// 24 and 25 word seeds are recognized.
func SeedTypeForWordCount(n int) (SeedType, error) {
	switch n {
	case electrumWordCount:
		return SeedTypeElectrum25, nil
	case bip39WordCount:
		return SeedTypeBIP39, nil
	}
	return 0, fmt.Errorf("%w: got %d words, expected %d or %d", ErrInvalidWordCount, n, bip39WordCount, electrumWordCount)
}

// Seed is a mnemonic word sequence and its type.
type Seed struct {
	Words []string
	Type  SeedType
}

// NewSeed validates words against seedType and returns a Seed. The words are
// normalized to lower case with surrounding space removed.
func NewSeed(words []string, seedType SeedType) (*Seed, error) {
	if seedType.WordCount() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeedType, seedType)
	}
	if len(words) != seedType.WordCount() {
		return nil, fmt.Errorf("%w: %s seed needs %d words, got %d", ErrInvalidWordCount, seedType, seedType.WordCount(), len(words))
	}

	normalized := make([]string, len(words))
	for i, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			return nil, fmt.Errorf("seed word %d is empty", i+1)
		}
		if seedType == SeedTypeBIP39 {
			if _, ok := bip39.GetWordIndex(w); !ok {
				return nil, fmt.Errorf("seed word %d (%q) is not a BIP39 word", i+1, w)
			}
		}
		normalized[i] = w
	}

	return &Seed{Words: normalized, Type: seedType}, nil
}

// SeedFromWords infers the seed type from the word count and validates the
// words.
func SeedFromWords(words []string) (*Seed, error) {
	seedType, err := SeedTypeForWordCount(len(words))
	if err != nil {
		return nil, err
	}
	return NewSeed(words, seedType)
}

// SplitMnemonic splits a space separated mnemonic into words.
func SplitMnemonic(mnemonic string) []string {
	return strings.Fields(mnemonic)
}

// Mnemonic returns the seed words joined by single spaces.
func (s *Seed) Mnemonic() string {
	return strings.Join(s.Words, " ")
}

// GenerateSeed returns a fresh 24-word BIP39 seed.
func GenerateSeed() (*Seed, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, fmt.Errorf("unable to generate seed entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("unable to encode seed mnemonic: %w", err)
	}
	return NewSeed(SplitMnemonic(mnemonic), SeedTypeBIP39)
}
