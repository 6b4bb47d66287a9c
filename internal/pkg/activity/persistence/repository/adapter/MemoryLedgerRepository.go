package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// MemoryLedgerRepository is the in-process ledger and post store used by tests and local runs.
type MemoryLedgerRepository struct {
	mu          sync.Mutex
	ledgers     map[profile.Ref]activity.Ledger
	posts       []activity.Post
	fail        error
	failPublish error
}

func NewMemoryLedgerRepository(seed ...activity.Ledger) *MemoryLedgerRepository {
	r := &MemoryLedgerRepository{ledgers: make(map[profile.Ref]activity.Ledger)}
	for _, l := range seed {
		r.Put(l)
	}
	return r
}

var (
	_ repository.LedgerRepository = (*MemoryLedgerRepository)(nil)
	_ repository.PostStore        = (*MemoryLedgerRepository)(nil)
)

func (r *MemoryLedgerRepository) Put(l activity.Ledger) {
	if l.OperatingStatus == "" {
		l.OperatingStatus = activity.StatusActive
	}
	r.mu.Lock()
	r.ledgers[l.Ref] = l
	r.mu.Unlock()
}

// FailPublishWith makes PublishPost return err until it is called again with nil.
func (r *MemoryLedgerRepository) FailPublishWith(err error) {
	r.mu.Lock()
	r.failPublish = err
	r.mu.Unlock()
}

// FailWith makes every subsequent call return err until it is called again with nil.
func (r *MemoryLedgerRepository) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// Snapshot returns every ledger ordered by reference.
func (r *MemoryLedgerRepository) Snapshot() []activity.Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]activity.Ledger, 0, len(r.ledgers))
	for _, l := range r.ledgers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.String() < out[j].Ref.String() })
	return out
}

func (r *MemoryLedgerRepository) Posts() []activity.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]activity.Post(nil), r.posts...)
}

func (r *MemoryLedgerRepository) Get(_ context.Context, ref profile.Ref) (activity.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return activity.Ledger{}, r.fail
	}
	l, ok := r.ledgers[ref]
	if !ok {
		return activity.Ledger{}, profile.ErrNotFound
	}
	return l, nil
}

func (r *MemoryLedgerRepository) DeactivateDormant(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	var n int64
	for ref, l := range r.ledgers {
		if l.OperatingStatus == activity.StatusActive && !l.Reference().After(cutoff) {
			l.OperatingStatus = activity.StatusInactive
			r.ledgers[ref] = l
			n++
		}
	}
	return n, nil
}

func (r *MemoryLedgerRepository) ListWarned(_ context.Context, from, to time.Time) ([]activity.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var out []activity.Ledger
	for _, l := range r.ledgers {
		ref := l.Reference()
		if l.OperatingStatus == activity.StatusActive && ref.After(from) && !ref.After(to) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.String() < out[j].Ref.String() })
	return out, nil
}

func (r *MemoryLedgerRepository) PublishPost(_ context.Context, p activity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if r.failPublish != nil {
		return r.failPublish
	}
	l, ok := r.ledgers[p.Author]
	if !ok {
		return profile.ErrNotFound
	}
	at := p.CreatedAt
	l.LastPostDate = &at
	l.OperatingStatus = activity.StatusActive
	r.ledgers[p.Author] = l
	r.posts = append(r.posts, p)
	return nil
}
