package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alertAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/alert/adapter"
	qport "github.com/kanaksh-py/startup-backend/internal/infrastructure/queue/port"
	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/adapter"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

type fakeServer struct {
	handlers map[string]qport.Handler
}

func (s *fakeServer) Register(taskType string, h qport.Handler) {
	if s.handlers == nil {
		s.handlers = make(map[string]qport.Handler)
	}
	s.handlers[taskType] = h
}
func (s *fakeServer) Run(context.Context) error  { return nil }
func (s *fakeServer) Stop(context.Context) error { return nil }

type fakeScheduler struct {
	cronspec string
	task     qport.Task
	opts     []qport.EnqueueOption
}

func (s *fakeScheduler) Register(cronspec string, t qport.Task, opts ...qport.EnqueueOption) (string, error) {
	s.cronspec, s.task, s.opts = cronspec, t, opts
	return "entry-1", nil
}
func (s *fakeScheduler) Run(context.Context) error { return nil }

func TestScheduleDeactivateDormant(t *testing.T) {
	s := &fakeScheduler{}
	id, err := ScheduleDeactivateDormant(s, "")
	require.NoError(t, err)
	assert.Equal(t, "entry-1", id)
	assert.Equal(t, "0 0 * * *", s.cronspec)
	assert.Equal(t, DeactivateDormantTaskType, s.task.Type)
	require.Len(t, s.opts, 1)
	assert.Equal(t, 5, s.opts[0].MaxRetry)
	assert.Equal(t, 23*time.Hour, s.opts[0].UniqueTTL)
	assert.Equal(t, LifecycleQueue, s.opts[0].Queue)
}

func TestSweepHandlerRunsUseCase(t *testing.T) {
	now := time.Now().UTC()
	old := now.Add(-40 * activity.Day)
	ref := profile.Ref{Kind: profile.KindStartup, ID: "s1"}
	repo := adapter.NewMemoryLedgerRepository(activity.Ledger{Ref: ref, LastPostDate: &old})

	srv := &fakeServer{}
	RegisterDeactivateDormantTask(srv, usecase.NewDeactivateDormantUseCase(repo, nil, zerolog.Nop()), zerolog.Nop())
	h := srv.handlers[DeactivateDormantTaskType]
	require.NotNil(t, h)

	require.NoError(t, h(context.Background(), qport.Task{Type: DeactivateDormantTaskType}))
	l, err := repo.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusInactive, l.OperatingStatus)

	repo.FailWith(errors.New("db down"))
	assert.Error(t, h(context.Background(), qport.Task{Type: DeactivateDormantTaskType}))
}

func TestWarningHandlerSkipsRetryForBadInput(t *testing.T) {
	repo := adapter.NewMemoryLedgerRepository()
	srv := &fakeServer{}
	RegisterSendWarningTask(srv, usecase.NewSendWarningUseCase(repo, alertAdapter.NewLogSender(zerolog.Nop())), zerolog.Nop())
	h := srv.handlers[usecase.SendWarningTaskType]
	require.NotNil(t, h)

	err := h(context.Background(), qport.Task{Payload: []byte("{not json")})
	assert.ErrorIs(t, err, qport.ErrSkipRetry)

	payload, _ := json.Marshal(usecase.WarningPayload{Kind: "startup", ProfileID: "gone"})
	err = h(context.Background(), qport.Task{Payload: payload})
	assert.ErrorIs(t, err, qport.ErrSkipRetry)

	warnedAt := time.Now().Add(-22 * activity.Day)
	repo.Put(activity.Ledger{Ref: profile.Ref{Kind: profile.KindStartup, ID: "s9"}, LastPostDate: &warnedAt})
	payload, _ = json.Marshal(usecase.WarningPayload{Kind: "startup", ProfileID: "s9"})
	assert.NoError(t, h(context.Background(), qport.Task{Payload: payload}))
}
