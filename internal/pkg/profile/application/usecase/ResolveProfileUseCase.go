package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cacheport "github.com/kanaksh-py/startup-backend/internal/infrastructure/cache/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/profile/persistence/repository/port"
)

// ErrPersistence wraps directory read failures.
var ErrPersistence = errors.New("profile use case persistence error")

// ResolveProfileUseCase resolves tagged or untagged profile ids through a dispatch table keyed by kind,
// with a read-through cache in front. Not-found results are never cached.
type ResolveProfileUseCase struct {
	repos map[profile.Kind]repository.ProfileRepository
	cache cacheport.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewResolveProfileUseCase builds the dispatch table from repos. cache may be nil.
func NewResolveProfileUseCase(cache cacheport.Cache, ttl time.Duration, log zerolog.Logger, repos ...repository.ProfileRepository) *ResolveProfileUseCase {
	table := make(map[profile.Kind]repository.ProfileRepository, len(repos))
	for _, r := range repos {
		table[r.Kind()] = r
	}
	return &ResolveProfileUseCase{repos: table, cache: cache, ttl: ttl, log: log}
}

// Execute resolves a tagged reference.
func (uc *ResolveProfileUseCase) Execute(ctx context.Context, ref profile.Ref) (profile.Profile, error) {
	repo, ok := uc.repos[ref.Kind]
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: %q", profile.ErrInvalidKind, ref.Kind)
	}
	return uc.lookup(ctx, repo, ref.ID)
}

// ExecuteByID resolves an id whose kind is unknown by trying each directory in profile.Kinds order.
func (uc *ResolveProfileUseCase) ExecuteByID(ctx context.Context, id string) (profile.Profile, error) {
	for _, kind := range profile.Kinds {
		repo, ok := uc.repos[kind]
		if !ok {
			continue
		}
		p, err := uc.lookup(ctx, repo, id)
		if errors.Is(err, profile.ErrNotFound) {
			continue
		}
		return p, err
	}
	return profile.Profile{}, profile.ErrNotFound
}

// ExecuteOrPlaceholder degrades a missing profile to profile.Placeholder. Other errors are returned.
func (uc *ResolveProfileUseCase) ExecuteOrPlaceholder(ctx context.Context, ref profile.Ref) (profile.Profile, error) {
	var (
		p   profile.Profile
		err error
	)
	if ref.Kind == "" {
		p, err = uc.ExecuteByID(ctx, ref.ID)
	} else {
		p, err = uc.Execute(ctx, ref)
	}
	if errors.Is(err, profile.ErrNotFound) {
		ph := profile.Placeholder(ref.ID)
		ph.Ref.Kind = ref.Kind
		return ph, nil
	}
	return p, err
}

func (uc *ResolveProfileUseCase) lookup(ctx context.Context, repo repository.ProfileRepository, id string) (profile.Profile, error) {
	key := cacheKey(repo.Kind(), id)
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, key); err == nil {
			var p profile.Profile
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return p, nil
			}
		} else if !errors.Is(err, cacheport.ErrMiss) {
			uc.log.Warn().Err(err).Str("key", key).Msg("profile cache read failed")
		}
	}

	p, err := repo.FindByID(ctx, id)
	if errors.Is(err, profile.ErrNotFound) {
		return profile.Profile{}, err
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.cache != nil {
		if b, err := json.Marshal(p); err == nil {
			if err := uc.cache.Set(ctx, key, string(b), uc.ttl); err != nil {
				uc.log.Warn().Err(err).Str("key", key).Msg("profile cache write failed")
			}
		}
	}
	return p, nil
}

func cacheKey(kind profile.Kind, id string) string {
	return "profile:" + string(kind) + ":" + id
}
