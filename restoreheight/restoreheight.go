// Package restoreheight translates between the calendar dates a user picks
// when restoring a wallet and the block heights the wallet engine scans from.
//
// The date -> height direction is answered by the wallet engine's own
// estimator. The height -> date direction is answered locally from a fixed
// calibration table, so that a stored restore height can be displayed as a
// date without a live engine.
package restoreheight

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/itswisdomagain/xmrwallet/asset"
)

// BlockTime is the average block time assumed when extrapolating past the
// last calibration entry. It matches the target block time used by the
// engine's height estimator.
const BlockTime = 120 * time.Second

// maxExtrapolatedBlocks caps the block offset past the last entry so that
// the extrapolated duration fits in a time.Duration.
const maxExtrapolatedBlocks = uint64(math.MaxInt64 / int64(BlockTime))

// Entry is a calibration sample: the chain height reached at the given unix
// time in milliseconds.
type Entry struct {
	Height          uint64
	TimestampMillis int64
}

// Time returns the entry's timestamp as a UTC time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.TimestampMillis).UTC()
}

// Estimator estimates the chain height for a date. engine.Driver satisfies
// this interface.
type Estimator interface {
	EstimateHeight(ctx context.Context, net asset.Network, date time.Time) (uint64, error)
}

// Index is an immutable, monotonic height <-> date table.
type Index struct {
	net       asset.Network
	entries   []Entry
	estimator Estimator
}

// NewIndex validates the provided entries and returns an Index over a copy of
// them. Entries must be strictly increasing in both height and timestamp.
func NewIndex(net asset.Network, entries []Entry, estimator Estimator) (*Index, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("restore height table is empty")
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Height <= prev.Height || cur.TimestampMillis <= prev.TimestampMillis {
			return nil, fmt.Errorf("restore height table is not monotonic at entry %d (%d@%d after %d@%d)",
				i, cur.Height, cur.TimestampMillis, prev.Height, prev.TimestampMillis)
		}
	}

	table := make([]Entry, len(entries))
	copy(table, entries)
	return &Index{
		net:       net,
		entries:   table,
		estimator: estimator,
	}, nil
}

// Default returns an Index over the built-in calibration table for net.
// Estimates are requested for the same net. Testnet and stagenet only carry
// their chain start, so their dates are extrapolated using BlockTime.
func Default(net asset.Network, estimator Estimator) *Index {
	idx, err := NewIndex(net, tableFor(net), estimator)
	if err != nil {
		panic(err) // the built-in tables are checked by tests
	}
	return idx
}

func tableFor(net asset.Network) []Entry {
	switch net {
	case asset.Testnet:
		return testnetTable
	case asset.Stagenet:
		return stagenetTable
	default:
		return mainnetTable
	}
}

// Net returns the network the index was built for.
func (idx *Index) Net() asset.Network {
	return idx.net
}

// Entries returns a copy of the calibration table.
func (idx *Index) Entries() []Entry {
	entries := make([]Entry, len(idx.entries))
	copy(entries, idx.entries)
	return entries
}

// HeightForDate asks the engine's estimator for the height to start scanning
// from for a wallet created on the given date.
func (idx *Index) HeightForDate(ctx context.Context, date time.Time) (uint64, error) {
	if idx.estimator == nil {
		return 0, fmt.Errorf("no height estimator configured")
	}
	return idx.estimator.EstimateHeight(ctx, idx.net, date)
}

// DateForHeight returns the date at which the chain reached height. Heights
// below the first entry map to the first entry's date. Heights at or beyond
// the last entry are extrapolated from the last entry using BlockTime.
// Between entries the date is linearly interpolated.
func (idx *Index) DateForHeight(height uint64) time.Time {
	first, last := idx.entries[0], idx.entries[len(idx.entries)-1]
	if height <= first.Height {
		return first.Time()
	}
	if height >= last.Height {
		blocks := height - last.Height
		if blocks > maxExtrapolatedBlocks {
			blocks = maxExtrapolatedBlocks
		}
		return last.Time().Add(time.Duration(blocks) * BlockTime)
	}

	// Index of the first entry above height. 0 < i < len(entries) here.
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Height > height
	})
	lo, hi := idx.entries[i-1], idx.entries[i]
	span := float64(hi.TimestampMillis - lo.TimestampMillis)
	frac := float64(height-lo.Height) / float64(hi.Height-lo.Height)
	return time.UnixMilli(lo.TimestampMillis + int64(frac*span)).UTC()
}

// HeightAt is the table-only inverse of DateForHeight. Dates before the first
// entry map to the first entry's height. Dates after the last entry are
// extrapolated using BlockTime. Engines without a better source can use this
// as their height estimator.
func (idx *Index) HeightAt(date time.Time) uint64 {
	first, last := idx.entries[0], idx.entries[len(idx.entries)-1]
	millis := date.UnixMilli()
	if millis <= first.TimestampMillis {
		return first.Height
	}
	if millis >= last.TimestampMillis {
		blocks := uint64(millis-last.TimestampMillis) / uint64(BlockTime.Milliseconds())
		if blocks > maxExtrapolatedBlocks {
			blocks = maxExtrapolatedBlocks
		}
		return last.Height + blocks
	}

	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].TimestampMillis > millis
	})
	lo, hi := idx.entries[i-1], idx.entries[i]
	frac := float64(millis-lo.TimestampMillis) / float64(hi.TimestampMillis-lo.TimestampMillis)
	return lo.Height + uint64(frac*float64(hi.Height-lo.Height))
}
