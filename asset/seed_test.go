package asset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedTypeForWordCount(t *testing.T) {
	seedType, err := SeedTypeForWordCount(25)
	require.NoError(t, err)
	require.Equal(t, SeedTypeElectrum25, seedType)

	seedType, err = SeedTypeForWordCount(24)
	require.NoError(t, err)
	require.Equal(t, SeedTypeBIP39, seedType)

	for _, n := range []int{0, 12, 23, 26} {
		_, err = SeedTypeForWordCount(n)
		require.ErrorIs(t, err, ErrInvalidWordCount)
	}
}

func TestParseSeedType(t *testing.T) {
	for _, seedType := range []SeedType{SeedTypeElectrum25, SeedTypeBIP39} {
		parsed, err := ParseSeedType(seedType.String())
		require.NoError(t, err)
		require.Equal(t, seedType, parsed)
	}
	_, err := ParseSeedType("POLYSEED_16")
	require.ErrorIs(t, err, ErrUnknownSeedType)
}

func TestNewSeed(t *testing.T) {
	generated, err := GenerateSeed()
	require.NoError(t, err)
	require.Len(t, generated.Words, 24)
	require.Equal(t, SeedTypeBIP39, generated.Type)

	upper := make([]string, len(generated.Words))
	for i, w := range generated.Words {
		upper[i] = " " + strings.ToUpper(w)
	}
	seed, err := NewSeed(upper, SeedTypeBIP39)
	require.NoError(t, err)
	require.Equal(t, generated.Words, seed.Words)

	bad := append([]string{"notaword"}, generated.Words[1:]...)
	_, err = NewSeed(bad, SeedTypeBIP39)
	require.Error(t, err)

	_, err = NewSeed(generated.Words, SeedTypeElectrum25)
	require.ErrorIs(t, err, ErrInvalidWordCount)

	electrum, err := SeedFromWords(append(generated.Words, "extra"))
	require.NoError(t, err)
	require.Equal(t, SeedTypeElectrum25, electrum.Type)

	blank := append([]string{""}, generated.Words[1:]...)
	_, err = NewSeed(blank, SeedTypeBIP39)
	require.Error(t, err)

	require.Equal(t, generated.Words, SplitMnemonic(generated.Mnemonic()))
}
