package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// restorePoint is the height a wallet scans from and the date it maps to.
type restorePoint struct {
	height uint64
	date   time.Time
}

func (rp restorePoint) engineArg() string {
	return strconv.FormatUint(rp.height, 10)
}

// resolveRestorePoint parses a decimal block height or a YYYY-MM-DD date. An
// empty string means height 0. Dates are converted to heights by the engine
// estimator and heights to dates by the local calibration table.
func (c *Controller) resolveRestorePoint(ctx context.Context, heightOrDate string) (restorePoint, error) {
	heightOrDate = strings.TrimSpace(heightOrDate)
	if heightOrDate == "" {
		heightOrDate = "0"
	}

	if height, err := strconv.ParseUint(heightOrDate, 10, 64); err == nil {
		return restorePoint{height: height, date: c.heights.DateForHeight(height)}, nil
	}

	date, err := time.Parse(time.DateOnly, heightOrDate)
	if err != nil {
		return restorePoint{}, fmt.Errorf("%w: %q", ErrInvalidRestorePoint, heightOrDate)
	}
	if date.After(time.Now()) {
		return restorePoint{}, fmt.Errorf("%w: %s is in the future", ErrInvalidRestorePoint, heightOrDate)
	}
	height, err := c.heights.HeightForDate(ctx, date)
	if err != nil {
		return restorePoint{}, fmt.Errorf("unable to estimate height for %s: %w", heightOrDate, err)
	}
	return restorePoint{height: height, date: date}, nil
}
