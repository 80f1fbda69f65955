package main

import "C"
import (
	"strconv"
	"time"
)

// walletState returns the current WalletState snapshot along with the sync
// progress report and the height a preserved resync would start from.
//
//export walletState
func walletState() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}

	state := c.State()
	res := walletStateRes(state)
	res.SyncProgress = syncReportRes(c.Session().SyncProgress())
	if state.HasWallet {
		height, date := c.RestoreHeight()
		res.RestoreHeight = &RestoreHeightRes{
			Height: height,
			Date:   date.Format(time.DateOnly),
		}
	}
	return jsonCResponse(res)
}

//export syncStatus
func syncStatus() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	return jsonCResponse(syncStateRes(c.Session().SyncState()))
}

//export statusInfo
func statusInfo() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	info, err := c.StatusInfo()
	if err != nil {
		return errResponse(err)
	}
	return jsonCResponse(info)
}

//export setRestoreHeight
func setRestoreHeight(cHeight *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	height, err := strconv.ParseUint(goString(cHeight), 10, 64)
	if err != nil {
		return errCResponse("height is not a uint64: %v", err)
	}
	if err := c.SetRestoreHeightOverride(height); err != nil {
		return errResponse(err)
	}
	return successCResponse("restore height saved")
}

//export dateForHeight
func dateForHeight(cHeight *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	height, err := strconv.ParseUint(goString(cHeight), 10, 64)
	if err != nil {
		return errCResponse("height is not a uint64: %v", err)
	}
	return successCResponse(c.DateForHeight(height).Format(time.DateOnly))
}

//export heightForDate
func heightForDate(cDate *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	date, err := time.Parse(time.DateOnly, goString(cDate))
	if err != nil {
		return errCResponse("date is not YYYY-MM-DD: %v", err)
	}
	height, err := c.HeightForDate(ctx, date)
	if err != nil {
		return errResponse(err)
	}
	return successCResponse(strconv.FormatUint(height, 10))
}
