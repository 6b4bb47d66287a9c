package repository

import (
	"context"
	"time"

	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// LedgerRepository reads and transitions the activity fields of both profile directories.
// Get returns profile.ErrNotFound for unknown profiles.
type LedgerRepository interface {
	Get(ctx context.Context, ref profile.Ref) (activity.Ledger, error)
	// DeactivateDormant marks inactive every active profile whose reference instant is at or before
	// cutoff and returns how many rows changed. Re-running with the same cutoff changes nothing.
	DeactivateDormant(ctx context.Context, cutoff time.Time) (int64, error)
	// ListWarned returns active profiles whose reference instant lies in (from, to].
	ListWarned(ctx context.Context, from, to time.Time) ([]activity.Ledger, error)
}

// PostStore is the write side of the content feed.
type PostStore interface {
	// PublishPost stores p and, atomically with it, sets the author's last_post_date to p.CreatedAt
	// and the profile active whatever its previous state. It returns profile.ErrNotFound when the
	// author has no ledger; nothing is written on any error.
	PublishPost(ctx context.Context, p activity.Post) error
}
