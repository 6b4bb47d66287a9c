package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	qport "github.com/kanaksh-py/startup-backend/internal/infrastructure/queue/port"
	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// SendWarningTaskType is the queue task that delivers one dormancy warning.
const SendWarningTaskType = "activity:send_warning"

// WarningPayload is the JSON payload of a SendWarningTaskType task.
type WarningPayload struct {
	Kind      string `json:"kind"`
	ProfileID string `json:"profile_id"`
}

func (p WarningPayload) Ref() profile.Ref {
	return profile.Ref{Kind: profile.Kind(p.Kind), ID: p.ProfileID}
}

// WarningTaskID is stable per profile and calendar day, so a re-run sweep cannot queue a second alert.
func WarningTaskID(ref profile.Ref, day time.Time) string {
	return fmt.Sprintf("warn:%s:%s:%s", ref.Kind, ref.ID, day.UTC().Format("2006-01-02"))
}

type DeactivateDormantOutput struct {
	Deactivated int64
	Warned      int
	Enqueued    int
}

// DeactivateDormantUseCase is one lifecycle sweep: a predicate-guarded bulk deactivation followed by
// queuing warnings for profiles inside the warning window. Running it again is harmless.
type DeactivateDormantUseCase struct {
	Ledgers repository.LedgerRepository
	// Queue receives warning tasks; nil skips warnings.
	Queue        qport.Client
	WarningQueue string
	Now          func() time.Time
	Log          zerolog.Logger
}

func NewDeactivateDormantUseCase(ledgers repository.LedgerRepository, queue qport.Client, log zerolog.Logger) *DeactivateDormantUseCase {
	return &DeactivateDormantUseCase{
		Ledgers:      ledgers,
		Queue:        queue,
		WarningQueue: "lifecycle",
		Now:          time.Now,
		Log:          log,
	}
}

func (uc *DeactivateDormantUseCase) Execute(ctx context.Context) (DeactivateDormantOutput, error) {
	now := uc.Now().UTC()
	var out DeactivateDormantOutput

	n, err := uc.Ledgers.DeactivateDormant(ctx, activity.DormancyCutoff(now))
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	out.Deactivated = n

	if uc.Queue == nil {
		return out, nil
	}

	from, to := activity.WarningWindow(now)
	warned, err := uc.Ledgers.ListWarned(ctx, from, to)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	out.Warned = len(warned)

	var enqueueErr error
	for _, l := range warned {
		payload, err := json.Marshal(WarningPayload{Kind: string(l.Ref.Kind), ProfileID: l.Ref.ID})
		if err != nil {
			return out, err
		}
		_, err = uc.Queue.Enqueue(ctx, qport.Task{Type: SendWarningTaskType, Payload: payload}, qport.EnqueueOption{
			Queue:     uc.WarningQueue,
			TaskID:    WarningTaskID(l.Ref, now),
			MaxRetry:  10,
			Retention: 48 * time.Hour,
		})
		switch {
		case err == nil:
			out.Enqueued++
		case errors.Is(err, qport.ErrDuplicate):
			// already queued by an earlier run today
		default:
			uc.Log.Warn().Err(err).Str("profile", l.Ref.String()).Msg("enqueue dormancy warning")
			enqueueErr = errors.Join(enqueueErr, err)
		}
	}
	if enqueueErr != nil {
		return out, fmt.Errorf("enqueue warnings: %w", enqueueErr)
	}
	return out, nil
}
