package adapter

import (
	"context"
	"sync"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/profile/persistence/repository/port"
)

// MemoryProfileRepository backs one directory in memory, for tests and local runs without Postgres.
type MemoryProfileRepository struct {
	kind profile.Kind

	mu       sync.RWMutex
	profiles map[string]profile.Profile
	lookups  int
}

func NewMemoryProfileRepository(kind profile.Kind, seed ...profile.Profile) *MemoryProfileRepository {
	r := &MemoryProfileRepository{kind: kind, profiles: make(map[string]profile.Profile)}
	for _, p := range seed {
		r.Put(p)
	}
	return r
}

var _ repository.ProfileRepository = (*MemoryProfileRepository)(nil)

func (r *MemoryProfileRepository) Kind() profile.Kind { return r.kind }

func (r *MemoryProfileRepository) Put(p profile.Profile) {
	p.Ref.Kind = r.kind
	r.mu.Lock()
	r.profiles[p.Ref.ID] = p
	r.mu.Unlock()
}

func (r *MemoryProfileRepository) FindByID(_ context.Context, id string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

// Lookups reports how many FindByID calls reached this repository.
func (r *MemoryProfileRepository) Lookups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookups
}
