package usecase

import (
	"context"
	"fmt"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("chat use case persistence error")

// ProfileResolver resolves participant references against the profile directories.
type ProfileResolver interface {
	Execute(ctx context.Context, ref profile.Ref) (profile.Profile, error)
	ExecuteByID(ctx context.Context, id string) (profile.Profile, error)
	ExecuteOrPlaceholder(ctx context.Context, ref profile.Ref) (profile.Profile, error)
}
