package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alertport "github.com/kanaksh-py/startup-backend/internal/infrastructure/alert/port"
	qport "github.com/kanaksh-py/startup-backend/internal/infrastructure/queue/port"
	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/adapter"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

var (
	now     = time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)
	startup = profile.Ref{Kind: profile.KindStartup, ID: "s1"}
	incub   = profile.Ref{Kind: profile.KindIncubator, ID: "i1"}
)

func clock() time.Time { return now }

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

// fakeQueue rejects a second task with the same TaskID, as asynq does.
type fakeQueue struct {
	mu    sync.Mutex
	ids   map[string]bool
	tasks []qport.Task
	err   error
}

func (q *fakeQueue) Enqueue(_ context.Context, t qport.Task, opts ...qport.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	if q.ids == nil {
		q.ids = make(map[string]bool)
	}
	var id string
	for _, o := range opts {
		if o.TaskID != "" {
			id = o.TaskID
		}
	}
	if id != "" && q.ids[id] {
		return "", qport.ErrDuplicate
	}
	q.ids[id] = true
	q.tasks = append(q.tasks, t)
	return id, nil
}

func (q *fakeQueue) Close() error { return nil }

type recordingSender struct {
	sent []alertport.DormancyWarning
}

func (s *recordingSender) SendDormancyWarning(_ context.Context, w alertport.DormancyWarning) error {
	s.sent = append(s.sent, w)
	return nil
}

func TestPublishWithNullLastPostDateSucceeds(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository(activity.Ledger{
		Ref: startup, OperatingStatus: activity.StatusInactive, CreatedAt: now.Add(-90 * activity.Day),
	})
	uc := NewPublishPostUseCase(repo, repo)
	uc.Now = clock

	out, err := uc.Execute(context.Background(), PublishPostInput{Author: startup, Content: "we shipped"})
	require.NoError(t, err)
	assert.Equal(t, activity.StatusActive, out.Standing.OperatingStatus)
	assert.Equal(t, activity.PhaseCooldown, out.Standing.Phase)

	l, err := repo.Get(context.Background(), startup)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusActive, l.OperatingStatus)
	require.NotNil(t, l.LastPostDate)
	assert.Equal(t, now, *l.LastPostDate)
	assert.Len(t, repo.Posts(), 1)
}

func TestPublishCooldownBoundary(t *testing.T) {
	ctx := context.Background()

	early := adapter.NewMemoryLedgerRepository(activity.Ledger{
		Ref: startup, LastPostDate: ago(6*activity.Day + 23*time.Hour), OperatingStatus: activity.StatusActive,
	})
	uc := NewPublishPostUseCase(early, early)
	uc.Now = clock
	_, err := uc.Execute(ctx, PublishPostInput{Author: startup, Content: "too soon"})
	var cd *activity.CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 1, cd.RetryAfterDays)
	assert.Equal(t, 1, cd.RetryAfterHours)
	assert.Empty(t, early.Posts())

	onTime := adapter.NewMemoryLedgerRepository(activity.Ledger{
		Ref: startup, LastPostDate: ago(7 * activity.Day), OperatingStatus: activity.StatusActive,
	})
	uc = NewPublishPostUseCase(onTime, onTime)
	uc.Now = clock
	_, err = uc.Execute(ctx, PublishPostInput{Author: startup, Content: "weekly update"})
	assert.NoError(t, err)
}

func TestPublishFailureLeavesNoPostAndKeepsCooldown(t *testing.T) {
	ctx := context.Background()
	repo := adapter.NewMemoryLedgerRepository(activity.Ledger{
		Ref: startup, LastPostDate: ago(10 * activity.Day), OperatingStatus: activity.StatusActive,
	})
	uc := NewPublishPostUseCase(repo, repo)
	uc.Now = clock

	repo.FailPublishWith(errors.New("db down"))
	_, err := uc.Execute(ctx, PublishPostInput{Author: startup, Content: "first try"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, repo.Posts())
	l, err := repo.Get(ctx, startup)
	require.NoError(t, err)
	assert.Equal(t, *ago(10 * activity.Day), *l.LastPostDate)

	repo.FailPublishWith(nil)
	_, err = uc.Execute(ctx, PublishPostInput{Author: startup, Content: "second try"})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, PublishPostInput{Author: startup, Content: "third try"})
	var cd *activity.CooldownError
	assert.True(t, errors.As(err, &cd))
	assert.Len(t, repo.Posts(), 1)
}

func TestPublishRejectsUnknownAndEmpty(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository()
	uc := NewPublishPostUseCase(repo, repo)

	_, err := uc.Execute(context.Background(), PublishPostInput{Author: startup, Content: "hello"})
	assert.ErrorIs(t, err, profile.ErrNotFound)

	_, err = uc.Execute(context.Background(), PublishPostInput{Author: startup, Content: " "})
	assert.ErrorIs(t, err, activity.ErrEmptyPost)

	repo.Put(activity.Ledger{Ref: startup, CreatedAt: now})
	repo.FailWith(errors.New("timeout"))
	_, err = uc.Execute(context.Background(), PublishPostInput{Author: startup, Content: "hello"})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestStatusCountdown(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository(
		activity.Ledger{Ref: startup, LastPostDate: ago(29 * activity.Day), OperatingStatus: activity.StatusActive},
		activity.Ledger{Ref: incub, LastPostDate: ago(31 * activity.Day), OperatingStatus: activity.StatusActive},
	)
	status := NewGetStatusUseCase(repo)
	status.Now = clock
	ctx := context.Background()

	s, err := status.Execute(ctx, startup)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusActive, s.OperatingStatus)
	assert.Equal(t, 1, s.DaysUntilDeactivation)
	assert.True(t, s.Warned)

	sweep := NewDeactivateDormantUseCase(repo, nil, zerolog.Nop())
	sweep.Now = clock
	out, err := sweep.Execute(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Deactivated)

	s, err = status.Execute(ctx, incub)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusInactive, s.OperatingStatus)
	assert.Equal(t, activity.PhaseInactive, s.Phase)

	_, err = status.Execute(ctx, profile.Ref{Kind: profile.KindStartup, ID: "missing"})
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestSweepIsIdempotent(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository(
		activity.Ledger{Ref: startup, LastPostDate: ago(45 * activity.Day), OperatingStatus: activity.StatusActive},
		activity.Ledger{Ref: incub, LastPostDate: ago(25 * activity.Day), OperatingStatus: activity.StatusActive},
		activity.Ledger{Ref: profile.Ref{Kind: profile.KindStartup, ID: "quiet"}, CreatedAt: now.Add(-30 * activity.Day)},
		activity.Ledger{Ref: profile.Ref{Kind: profile.KindStartup, ID: "busy"}, LastPostDate: ago(time.Hour)},
	)
	queue := &fakeQueue{}
	sweep := NewDeactivateDormantUseCase(repo, queue, zerolog.Nop())
	sweep.Now = clock
	ctx := context.Background()

	first, err := sweep.Execute(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, first.Deactivated)
	assert.Equal(t, 1, first.Warned)
	assert.Equal(t, 1, first.Enqueued)
	after := repo.Snapshot()

	second, err := sweep.Execute(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, second.Deactivated)
	assert.Equal(t, 1, second.Warned)
	assert.Equal(t, 0, second.Enqueued)
	assert.Equal(t, after, repo.Snapshot())

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, SendWarningTaskType, queue.tasks[0].Type)
	var p WarningPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload, &p))
	assert.Equal(t, incub, p.Ref())
}

func TestSweepSurfacesFailures(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository()
	repo.FailWith(errors.New("db down"))
	sweep := NewDeactivateDormantUseCase(repo, nil, zerolog.Nop())
	_, err := sweep.Execute(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)

	repo.FailWith(nil)
	repo.Put(activity.Ledger{Ref: incub, LastPostDate: ago(22 * activity.Day)})
	sweep = NewDeactivateDormantUseCase(repo, &fakeQueue{err: errors.New("redis down")}, zerolog.Nop())
	sweep.Now = clock
	_, err = sweep.Execute(context.Background())
	assert.Error(t, err)
}

func TestWarningTaskID(t *testing.T) {
	at := time.Date(2024, 9, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "warn:incubator:i1:2024-09-15", WarningTaskID(incub, at))
}

func TestSendWarningSkipsProfilesThatPosted(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository(
		activity.Ledger{Ref: incub, LastPostDate: ago(23 * activity.Day)},
		activity.Ledger{Ref: startup, LastPostDate: ago(2 * activity.Day)},
	)
	sender := &recordingSender{}
	uc := NewSendWarningUseCase(repo, sender)
	uc.Now = clock
	ctx := context.Background()

	sent, err := uc.Execute(ctx, incub)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, 7, sender.sent[0].DaysUntilDeactivation)

	sent, err = uc.Execute(ctx, startup)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Len(t, sender.sent, 1)
}
