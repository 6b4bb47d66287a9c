package port

import (
	"context"
	"time"
)

// DormancyWarning tells a profile it will be deactivated unless it publishes.
type DormancyWarning struct {
	ProfileKind           string
	ProfileID             string
	LastActivity          time.Time
	DaysUntilDeactivation int
	DeactivationAt        time.Time
}

// Sender delivers alerts to profile owners (email, push, ...). Delivery is at-least-once.
type Sender interface {
	SendDormancyWarning(ctx context.Context, w DormancyWarning) error
}
