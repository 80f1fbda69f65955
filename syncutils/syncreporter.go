package syncutils

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/decred/slog"
)

// SyncProgressReporter turns the remaining block counts reported by a wallet
// engine into progress reports with a time estimate and logs them.
type SyncProgressReporter struct {
	log         slog.Logger
	logInterval time.Duration

	mtx              sync.RWMutex
	currentSyncStage SyncStage
	scanReport       *SyncActivityReport
	lastReport       *SyncProgressReport
	lastLogTime      time.Time
}

// NewSyncProgressReporter creates a reporter that logs progress at most once
// every logInterval until sync completes.
func NewSyncProgressReporter(log slog.Logger, logInterval time.Duration) *SyncProgressReporter {
	return &SyncProgressReporter{
		log:         log,
		logInterval: logInterval,
	}
}

func (reporter *SyncProgressReporter) HandleConnecting() {
	reporter.mtx.Lock()
	defer reporter.mtx.Unlock()

	if reporter.currentSyncStage != ConnectingSyncStage {
		reporter.log.Infof("Connecting to node")
	}
	reporter.currentSyncStage = ConnectingSyncStage
}

// HandleBlocksRemaining records that remainingBlocks blocks are yet to be
// scanned. The first call after connecting starts a new scan report.
func (reporter *SyncProgressReporter) HandleBlocksRemaining(remainingBlocks uint64) *SyncProgressReport {
	reporter.mtx.Lock()
	defer reporter.mtx.Unlock()

	if reporter.currentSyncStage != BlocksScanSyncStage || reporter.scanReport == nil {
		reporter.currentSyncStage = BlocksScanSyncStage
		reporter.scanReport = &SyncActivityReport{
			StartTimeStamp: time.Now(),
			TargetHeight:   remainingBlocks,
		}
		reporter.lastLogTime = time.Time{}
		reporter.log.Infof("Sync started, %d blocks to scan", remainingBlocks)
	}

	scan := reporter.scanReport
	if remainingBlocks > scan.TargetHeight-scan.LastHeight {
		// New blocks were mined while scanning.
		scan.TargetHeight = scan.LastHeight + remainingBlocks
	}
	scan.LastHeight = scan.TargetHeight - remainingBlocks

	progress, timeRemaining := scan.CalculateProgress()
	report := &SyncProgressReport{
		CurrentStage:       reporter.currentSyncStage,
		ScannedBlocks:      scan.LastHeight,
		TotalBlocks:        scan.TargetHeight,
		PercentageProgress: progress,
		TimeRemaining:      timeRemaining,
	}
	reporter.lastReport = report

	if time.Since(reporter.lastLogTime) >= reporter.logInterval {
		reporter.lastLogTime = time.Now()
		reporter.logProgress(report)
	}

	return report
}

func (reporter *SyncProgressReporter) HandleSyncCompleted() {
	reporter.mtx.Lock()
	defer reporter.mtx.Unlock()

	if reporter.currentSyncStage == SyncCompleteSyncStage {
		return
	}

	reporter.currentSyncStage = SyncCompleteSyncStage
	reporter.scanReport = nil
	reporter.lastReport = nil
	reporter.log.Infof("Syncing 100%% complete")
}

// HandleSyncEnded records that the engine is no longer connected.
func (reporter *SyncProgressReporter) HandleSyncEnded(reason string) {
	reporter.mtx.Lock()
	defer reporter.mtx.Unlock()

	if reporter.currentSyncStage == InvalidSyncStage {
		return
	}

	reporter.currentSyncStage = InvalidSyncStage
	reporter.scanReport = nil
	reporter.lastReport = nil
	if reason != "" {
		reporter.log.Infof("Sync ended: %s", reason)
	} else {
		reporter.log.Infof("Sync ended")
	}
}

// Stage returns the current sync stage.
func (reporter *SyncProgressReporter) Stage() SyncStage {
	reporter.mtx.RLock()
	defer reporter.mtx.RUnlock()
	return reporter.currentSyncStage
}

// LastReport returns the most recent progress report, or nil if no blocks
// are being scanned.
func (reporter *SyncProgressReporter) LastReport() *SyncProgressReport {
	reporter.mtx.RLock()
	defer reporter.mtx.RUnlock()
	if reporter.lastReport == nil {
		return nil
	}
	report := *reporter.lastReport
	return &report
}

func (reporter *SyncProgressReporter) logProgress(report *SyncProgressReport) {
	timeRemaining := func() string {
		seconds := report.TimeRemaining.Seconds()
		if minutes := seconds / 60; minutes >= 1 {
			return fmt.Sprintf("%.0f mins", math.Ceil(minutes))
		}
		if seconds == 1 {
			return "1 sec"
		}
		return fmt.Sprintf("%.0f secs", math.Ceil(seconds))
	}()

	reporter.log.Infof("Syncing %.2f%% complete, remaining %s. %d/%d blocks scanned.",
		report.PercentageProgress, timeRemaining, report.ScannedBlocks, report.TotalBlocks)
}
