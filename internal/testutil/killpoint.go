//go:build crashtest

// Package testutil provides test utilities for whitebox crash testing of the
// journal and PRB packages.
//
// Kill points provide a mechanism to deterministically exit a process at
// specific code locations for whitebox crash testing. Unlike sync points
// (which pause execution), kill points terminate the process to simulate
// a crash so that recovery code (prb.Open, journal segment recovery) can be
// exercised against a truncated or torn write.
//
// Usage:
//
//	// In production code (compiled out without the build tag):
//	testutil.MaybeKill(testutil.KPJournalSync0)
//
//	// In test harness (set via env var or API):
//	testutil.SetKillPoint(testutil.KPJournalSync0)
//
// Build with kill points enabled:
//
//	go build -tags crashtest ./...
package testutil

import (
	"os"
	"sync"
	"sync/atomic"
)

// killPointState holds the global kill point configuration.
type killPointState struct {
	// target is the name of the kill point that should trigger exit.
	// Empty string means no kill point is set.
	target atomic.Value // stores string

	// armed controls whether kill points are active.
	// This allows temporarily disabling kill points without clearing the target.
	armed atomic.Bool

	// hitCount tracks how many times each kill point was reached.
	// Useful for debugging and verification.
	mu        sync.RWMutex
	hitCounts map[string]int64
}

// globalKillPoint is the singleton kill point state.
var globalKillPoint = &killPointState{
	hitCounts: make(map[string]int64),
}

// KillPointEnvVar is the environment variable used to set the kill point target.
const KillPointEnvVar = "PRBDB_KILL_POINT"

func init() {
	// Check environment variable on startup
	if target := os.Getenv(KillPointEnvVar); target != "" {
		globalKillPoint.target.Store(target)
		globalKillPoint.armed.Store(true)
	}
}

// SetKillPoint sets the target kill point name.
// When MaybeKill is called with this name, the process will exit.
func SetKillPoint(name string) {
	globalKillPoint.target.Store(name)
	globalKillPoint.armed.Store(true)
}

// ClearKillPoint clears the kill point target.
func ClearKillPoint() {
	globalKillPoint.target.Store("")
	globalKillPoint.armed.Store(false)
}

// ArmKillPoint enables kill point processing.
func ArmKillPoint() {
	globalKillPoint.armed.Store(true)
}

// DisarmKillPoint disables kill point processing without clearing the target.
func DisarmKillPoint() {
	globalKillPoint.armed.Store(false)
}

// IsKillPointArmed returns whether kill points are currently armed.
func IsKillPointArmed() bool {
	return globalKillPoint.armed.Load()
}

// GetKillPointTarget returns the current kill point target.
func GetKillPointTarget() string {
	if v := globalKillPoint.target.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// GetKillPointHitCount returns how many times a kill point was reached.
func GetKillPointHitCount(name string) int64 {
	globalKillPoint.mu.RLock()
	defer globalKillPoint.mu.RUnlock()
	return globalKillPoint.hitCounts[name]
}

// ResetKillPointCounts resets all hit counts.
func ResetKillPointCounts() {
	globalKillPoint.mu.Lock()
	defer globalKillPoint.mu.Unlock()
	globalKillPoint.hitCounts = make(map[string]int64)
}

// MaybeKill checks if the named kill point matches the target and exits if so.
// This is the primary entry point for kill points in production code.
//
// If the kill point is armed and the name matches the target, the process
// exits with code 0 (clean exit, not a crash signal).
func MaybeKill(name string) {
	if !globalKillPoint.armed.Load() {
		return
	}

	// Track hit count
	globalKillPoint.mu.Lock()
	globalKillPoint.hitCounts[name]++
	globalKillPoint.mu.Unlock()

	// Check if this is the target
	target, ok := globalKillPoint.target.Load().(string)
	if !ok || target == "" {
		return
	}

	if target == name {
		// Exit cleanly to simulate a crash
		// Exit code 0 indicates intentional kill, not an error
		os.Exit(0)
	}
}

// KillPointNames defines the standard kill point names used to crash-test
// the journal segment lifecycle. They follow the convention
// "Component.Operation:N" where N is 0 for "before" and 1 for "after".
const (
	// Segment write kill points: the two-phase prb.Prepare/Commit boundary
	// is the only place a crash can leave a segment observably inconsistent,
	// since a reservation that is never committed is silently discarded by
	// the next Prepare on reopen.
	KPSegmentPrepare0 = "Segment.Prepare:0" // before Prepare reserves space
	KPSegmentCommit0  = "Segment.Commit:0"  // after Prepare, before Commit publishes
	KPSegmentCommit1  = "Segment.Commit:1"  // after Commit, before fsync

	// Journal durability kill points
	KPJournalSync0 = "Journal.Sync:0" // before fsync of the backing file
	KPJournalSync1 = "Journal.Sync:1" // after fsync (data is durable)

	// Segment rotation (seal + archive) kill points
	KPRotateSeal0    = "Rotate.Seal:0"    // before sealing the active segment
	KPRotateArchive0 = "Rotate.Archive:0" // before writing the compressed archive
	KPRotateArchive1 = "Rotate.Archive:1" // after writing the compressed archive
)
