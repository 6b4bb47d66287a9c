package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/cache/adapter"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/profile/persistence/repository/adapter"
)

type brokenRepo struct{}

func (brokenRepo) Kind() profile.Kind { return profile.KindStartup }
func (brokenRepo) FindByID(context.Context, string) (profile.Profile, error) {
	return profile.Profile{}, errors.New("connection refused")
}

func fixtures() (*adapter.MemoryProfileRepository, *adapter.MemoryProfileRepository) {
	startups := adapter.NewMemoryProfileRepository(profile.KindStartup,
		profile.Profile{Ref: profile.Ref{ID: "s1"}, Name: "Rocket Labs"})
	incubators := adapter.NewMemoryProfileRepository(profile.KindIncubator,
		profile.Profile{Ref: profile.Ref{ID: "i1"}, Name: "Launchpad"})
	return startups, incubators
}

func TestResolveDispatchesByKind(t *testing.T) {
	startups, incubators := fixtures()
	uc := NewResolveProfileUseCase(nil, 0, zerolog.Nop(), startups, incubators)
	ctx := context.Background()

	p, err := uc.Execute(ctx, profile.Ref{Kind: profile.KindIncubator, ID: "i1"})
	require.NoError(t, err)
	assert.Equal(t, "Launchpad", p.Name)
	assert.Equal(t, profile.KindIncubator, p.Ref.Kind)

	_, err = uc.Execute(ctx, profile.Ref{Kind: profile.KindStartup, ID: "i1"})
	assert.ErrorIs(t, err, profile.ErrNotFound)

	_, err = uc.Execute(ctx, profile.Ref{Kind: "investor", ID: "x"})
	assert.ErrorIs(t, err, profile.ErrInvalidKind)
}

func TestResolveByIDTriesEveryDirectory(t *testing.T) {
	startups, incubators := fixtures()
	uc := NewResolveProfileUseCase(nil, 0, zerolog.Nop(), startups, incubators)

	p, err := uc.ExecuteByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, profile.KindIncubator, p.Ref.Kind)

	_, err = uc.ExecuteByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestResolveOrPlaceholder(t *testing.T) {
	startups, incubators := fixtures()
	uc := NewResolveProfileUseCase(nil, 0, zerolog.Nop(), startups, incubators)

	p, err := uc.ExecuteOrPlaceholder(context.Background(), profile.Ref{ID: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, profile.UnknownName, p.Name)
	assert.Nil(t, p.LogoURL)
	assert.Equal(t, "ghost", p.Ref.ID)
}

func TestResolveUsesCache(t *testing.T) {
	startups, incubators := fixtures()
	cache := cacheAdapter.NewMemoryCache()
	uc := NewResolveProfileUseCase(cache, time.Minute, zerolog.Nop(), startups, incubators)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := uc.Execute(ctx, profile.Ref{Kind: profile.KindStartup, ID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, "Rocket Labs", p.Name)
	}
	assert.Equal(t, 1, startups.Lookups())

	// misses are not cached
	_, _ = uc.Execute(ctx, profile.Ref{Kind: profile.KindStartup, ID: "late"})
	startups.Put(profile.Profile{Ref: profile.Ref{ID: "late"}, Name: "Late Bloomer"})
	p, err := uc.Execute(ctx, profile.Ref{Kind: profile.KindStartup, ID: "late"})
	require.NoError(t, err)
	assert.Equal(t, "Late Bloomer", p.Name)
}

func TestResolveWrapsRepositoryFailure(t *testing.T) {
	uc := NewResolveProfileUseCase(nil, 0, zerolog.Nop(), brokenRepo{})
	_, err := uc.ExecuteOrPlaceholder(context.Background(), profile.Ref{Kind: profile.KindStartup, ID: "s1"})
	assert.ErrorIs(t, err, ErrPersistence)
}
