//go:build !crashtest

// Package testutil provides test utilities for whitebox crash testing of the
// journal and PRB packages.
//
// This file provides no-op implementations of kill point functions for
// production builds. When built without the "crashtest" tag, all kill point
// calls are effectively eliminated by the compiler.
package testutil

// KillPointEnvVar is the environment variable used to set the kill point target.
// In production builds, this is defined but ignored.
const KillPointEnvVar = "PRBDB_KILL_POINT"

// SetKillPoint is a no-op in production builds.
func SetKillPoint(_ string) {}

// ClearKillPoint is a no-op in production builds.
func ClearKillPoint() {}

// ArmKillPoint is a no-op in production builds.
func ArmKillPoint() {}

// DisarmKillPoint is a no-op in production builds.
func DisarmKillPoint() {}

// IsKillPointArmed always returns false in production builds.
func IsKillPointArmed() bool { return false }

// GetKillPointTarget always returns empty string in production builds.
func GetKillPointTarget() string { return "" }

// GetKillPointHitCount always returns 0 in production builds.
func GetKillPointHitCount(_ string) int64 { return 0 }

// ResetKillPointCounts is a no-op in production builds.
func ResetKillPointCounts() {}

// MaybeKill is a no-op in production builds.
// The compiler should inline and eliminate this entirely.
func MaybeKill(_ string) {}

// Kill point name constants - defined for API compatibility even in prod builds.
const (
	KPSegmentPrepare0 = "Segment.Prepare:0"
	KPSegmentCommit0  = "Segment.Commit:0"
	KPSegmentCommit1  = "Segment.Commit:1"

	KPJournalSync0 = "Journal.Sync:0"
	KPJournalSync1 = "Journal.Sync:1"

	KPRotateSeal0    = "Rotate.Seal:0"
	KPRotateArchive0 = "Rotate.Archive:0"
	KPRotateArchive1 = "Rotate.Archive:1"
)
