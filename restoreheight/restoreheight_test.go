package restoreheight

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/stretchr/testify/require"
)

func TestTableIsMonotonic(t *testing.T) {
	for i := 1; i < len(mainnetTable); i++ {
		prev, cur := mainnetTable[i-1], mainnetTable[i]
		require.Less(t, prev.Height, cur.Height, "entry %d", i)
		require.Less(t, prev.TimestampMillis, cur.TimestampMillis, "entry %d", i)
	}
	for _, net := range []asset.Network{asset.Mainnet, asset.Testnet, asset.Stagenet} {
		require.NotPanics(t, func() { Default(net, nil) }, net.String())
	}
}

func TestNewIndexRejectsBadTables(t *testing.T) {
	_, err := NewIndex(asset.Mainnet, nil, nil)
	require.Error(t, err)

	_, err = NewIndex(asset.Mainnet, []Entry{{100, 1000}, {100, 2000}}, nil)
	require.Error(t, err)

	_, err = NewIndex(asset.Mainnet, []Entry{{100, 2000}, {200, 1000}}, nil)
	require.Error(t, err)
}

func TestDateForHeight(t *testing.T) {
	entries := []Entry{
		{Height: 1000, TimestampMillis: 1_000_000},
		{Height: 2000, TimestampMillis: 2_000_000},
		{Height: 4000, TimestampMillis: 3_000_000},
	}
	idx, err := NewIndex(asset.Mainnet, entries, nil)
	require.NoError(t, err)

	tests := []struct {
		height uint64
		millis int64
	}{
		{0, 1_000_000},
		{1000, 1_000_000},
		{1500, 1_500_000},
		{2000, 2_000_000},
		{3000, 2_500_000},
		{4000, 3_000_000},
		{4010, 3_000_000 + 10*BlockTime.Milliseconds()},
	}
	for _, tc := range tests {
		require.Equal(t, tc.millis, idx.DateForHeight(tc.height).UnixMilli(), "height %d", tc.height)
	}
}

func TestDefaultBoundaries(t *testing.T) {
	idx := Default(asset.Mainnet, nil)
	entries := idx.Entries()
	first, last := entries[0], entries[len(entries)-1]

	require.Equal(t, first.Time(), idx.DateForHeight(0))
	require.Equal(t, last.Time(), idx.DateForHeight(last.Height))

	beyond := last.Height + 720 // one day of blocks
	require.Equal(t, last.Time().Add(24*time.Hour), idx.DateForHeight(beyond))
}

func TestDateForHeightIsMonotonic(t *testing.T) {
	idx := Default(asset.Mainnet, nil)
	last := idx.Entries()[len(idx.Entries())-1]

	prev := idx.DateForHeight(0)
	for h := uint64(0); h <= last.Height+100_000; h += 997 {
		d := idx.DateForHeight(h)
		require.False(t, d.Before(prev), "height %d", h)
		prev = d
	}
}

func TestHeightAtInvertsDateForHeight(t *testing.T) {
	idx := Default(asset.Mainnet, nil)
	for _, e := range idx.Entries() {
		require.Equal(t, e.Height, idx.HeightAt(e.Time()))
	}

	last := idx.Entries()[len(idx.Entries())-1]
	require.Equal(t, last.Height+720, idx.HeightAt(last.Time().Add(24*time.Hour)))
	require.Equal(t, idx.Entries()[0].Height, idx.HeightAt(time.Unix(0, 0)))
}

func TestExtrapolationSaturates(t *testing.T) {
	idx := Default(asset.Mainnet, nil)
	last := idx.Entries()[len(idx.Entries())-1]

	atLast := idx.DateForHeight(last.Height)
	far := idx.DateForHeight(last.Height + 100_000_000)
	require.True(t, far.After(atLast), "far date %v", far)
	require.False(t, idx.DateForHeight(math.MaxUint64).Before(far))

	farHeight := idx.HeightAt(time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC))
	require.Greater(t, farHeight, last.Height)
	require.False(t, idx.DateForHeight(farHeight).Before(atLast))
}

func TestDefaultPerNetwork(t *testing.T) {
	date := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	mainnet := Default(asset.Mainnet, nil)
	stagenet := Default(asset.Stagenet, nil)
	testnet := Default(asset.Testnet, nil)

	require.Equal(t, asset.Stagenet, stagenet.Net())
	require.Less(t, stagenet.HeightAt(date), mainnet.HeightAt(date))
	require.NotEqual(t, testnet.HeightAt(date), mainnet.HeightAt(date))

	// Single-entry tables extrapolate at BlockTime in both directions.
	h := stagenet.HeightAt(date)
	require.True(t, date.Equal(stagenet.DateForHeight(h)))
	require.Equal(t, date.Add(BlockTime), stagenet.DateForHeight(h+1))
}

type recordingEstimator struct{ nets []asset.Network }

func (r *recordingEstimator) EstimateHeight(_ context.Context, net asset.Network, _ time.Time) (uint64, error) {
	r.nets = append(r.nets, net)
	return 7, nil
}

func TestHeightForDateUsesIndexNetwork(t *testing.T) {
	est := new(recordingEstimator)
	_, err := Default(asset.Testnet, est).HeightForDate(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, []asset.Network{asset.Testnet}, est.nets)
}

type fixedEstimator uint64

func (f fixedEstimator) EstimateHeight(context.Context, asset.Network, time.Time) (uint64, error) {
	return uint64(f), nil
}

func TestHeightForDateDelegates(t *testing.T) {
	_, err := Default(asset.Mainnet, nil).HeightForDate(context.Background(), time.Now())
	require.Error(t, err)

	height, err := Default(asset.Mainnet, fixedEstimator(42)).HeightForDate(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, uint64(42), height)
}
