package activity

import (
	"fmt"
	"time"
)

// Standing is the lifecycle view of a ledger at a given instant.
type Standing struct {
	OperatingStatus       OperatingStatus `json:"operating_status"`
	Phase                 Phase           `json:"phase"`
	CanPostNow            bool            `json:"can_post_now"`
	DaysUntilNextPost     int             `json:"days_until_next_post"`
	DaysUntilDeactivation int             `json:"days_until_deactivation"`
	Warned                bool            `json:"warned"`
	LastPostDate          *time.Time      `json:"last_post_date"`
	NextPostAt            *time.Time      `json:"next_post_at"`
	DeactivationAt        *time.Time      `json:"deactivation_at"`
}

// Evaluate derives the standing of l at now.
func Evaluate(l Ledger, now time.Time) Standing {
	s := Standing{
		OperatingStatus: l.OperatingStatus,
		LastPostDate:    l.LastPostDate,
		CanPostNow:      true,
	}
	if s.OperatingStatus == "" {
		s.OperatingStatus = StatusActive
	}

	if l.LastPostDate != nil {
		next := l.LastPostDate.Add(PostCooldown)
		if now.Before(next) {
			s.CanPostNow = false
			s.NextPostAt = &next
			s.DaysUntilNextPost = ceilDays(next.Sub(now))
		}
	}

	if s.OperatingStatus == StatusInactive {
		s.Phase = PhaseInactive
		return s
	}

	deactivation := l.Reference().Add(DeactivateAfter)
	s.DeactivationAt = &deactivation
	s.DaysUntilDeactivation = ceilDays(deactivation.Sub(now))
	s.Warned = now.Sub(l.Reference()) >= WarningAfter

	switch {
	case s.Warned:
		s.Phase = PhaseWarned
	case !s.CanPostNow:
		s.Phase = PhaseCooldown
	default:
		s.Phase = PhaseActive
	}
	return s
}

// CooldownError rejects a publish attempted before the cooldown elapsed. It is a policy
// decision carrying wait metadata, not a failure.
type CooldownError struct {
	Remaining  time.Duration
	NextPostAt time.Time
	// RetryAfterDays is the wait rounded up to whole days.
	RetryAfterDays int
	// RetryAfterHours is the wait rounded up to whole hours, set only within the final day.
	RetryAfterHours int
}

func (e *CooldownError) Error() string {
	if e.RetryAfterHours > 0 {
		return fmt.Sprintf("activity: posting cooldown, retry in %d hours", e.RetryAfterHours)
	}
	return fmt.Sprintf("activity: posting cooldown, retry in %d days", e.RetryAfterDays)
}

// CheckCooldown allows a publish when the profile never posted or the last post is at least
// PostCooldown old.
func CheckCooldown(l Ledger, now time.Time) error {
	if l.LastPostDate == nil {
		return nil
	}
	next := l.LastPostDate.Add(PostCooldown)
	remaining := next.Sub(now)
	if remaining <= 0 {
		return nil
	}
	e := &CooldownError{
		Remaining:      remaining,
		NextPostAt:     next,
		RetryAfterDays: ceilDays(remaining),
	}
	if remaining < Day {
		e.RetryAfterHours = ceilHours(remaining)
	}
	return e
}
