package activity

import (
	"time"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

const (
	Day = 24 * time.Hour

	// PostCooldown is the minimum gap between two publishes of the same profile.
	PostCooldown = 7 * Day
	// WarningAfter is the silence after which a profile is warned about deactivation.
	WarningAfter = 21 * Day
	// DeactivateAfter is the silence after which the lifecycle sweep deactivates a profile.
	DeactivateAfter = 30 * Day
)

// OperatingStatus is the only persisted lifecycle state.
type OperatingStatus string

const (
	StatusActive   OperatingStatus = "active"
	StatusInactive OperatingStatus = "inactive"
)

// Phase is the lifecycle state derived on read. It is never stored.
type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseCooldown Phase = "active_cooldown"
	PhaseWarned   Phase = "warned"
	PhaseInactive Phase = "inactive"
)

// Ledger is the activity record colocated with a profile row.
type Ledger struct {
	Ref             profile.Ref
	LastPostDate    *time.Time
	OperatingStatus OperatingStatus
	CreatedAt       time.Time
}

// Reference is the instant dormancy is measured from: the last post or, for a profile that
// never posted, its creation.
func (l Ledger) Reference() time.Time {
	if l.LastPostDate != nil {
		return *l.LastPostDate
	}
	return l.CreatedAt
}

// DormancyCutoff is the latest reference instant that the sweep at now deactivates.
func DormancyCutoff(now time.Time) time.Time {
	return now.Add(-DeactivateAfter)
}

// WarningWindow bounds the reference instants of profiles that are warned but not yet due:
// from (exclusive) to to (inclusive).
func WarningWindow(now time.Time) (from, to time.Time) {
	return now.Add(-DeactivateAfter), now.Add(-WarningAfter)
}

// ceilDays rounds d up to whole days; zero or negative durations give 0.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + Day - 1) / Day)
}

func ceilHours(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Hour - 1) / time.Hour)
}
