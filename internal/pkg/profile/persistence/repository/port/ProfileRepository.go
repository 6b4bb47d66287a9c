package repository

import (
	"context"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// ProfileRepository reads one directory (startups or incubators). Missing rows return profile.ErrNotFound.
type ProfileRepository interface {
	Kind() profile.Kind
	FindByID(ctx context.Context, id string) (profile.Profile, error)
}
