package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	qport "github.com/kanaksh-py/startup-backend/internal/infrastructure/queue/port"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// DeactivateDormantTaskType is the queue task name of the daily lifecycle sweep.
const DeactivateDormantTaskType = "activity:deactivate_dormant"

// DefaultCron runs the sweep once per day at midnight in the scheduler's location.
const DefaultCron = "0 0 * * *"

// LifecycleQueue is the queue both lifecycle tasks run on.
const LifecycleQueue = "lifecycle"

// ScheduleDeactivateDormant registers the recurring sweep. The unique window keeps two scheduler
// replicas, or a restart inside the same day, from queuing a second sweep.
func ScheduleDeactivateDormant(s qport.Scheduler, cronspec string) (string, error) {
	if cronspec == "" {
		cronspec = DefaultCron
	}
	return s.Register(cronspec, qport.Task{Type: DeactivateDormantTaskType}, qport.EnqueueOption{
		Queue:     LifecycleQueue,
		MaxRetry:  5,
		Timeout:   10 * time.Minute,
		UniqueTTL: 23 * time.Hour,
	})
}

// RegisterDeactivateDormantTask binds the sweep handler. A failed sweep returns its error so the
// queue retries it with backoff; the next scheduled run happens regardless.
func RegisterDeactivateDormantTask(srv qport.Server, uc *usecase.DeactivateDormantUseCase, log zerolog.Logger) {
	srv.Register(DeactivateDormantTaskType, func(ctx context.Context, _ qport.Task) error {
		started := time.Now()
		out, err := uc.Execute(ctx)
		if err != nil {
			log.Error().Err(err).Int64("deactivated", out.Deactivated).Msg("lifecycle sweep failed")
			return err
		}
		log.Info().
			Int64("deactivated", out.Deactivated).
			Int("warned", out.Warned).
			Int("enqueued", out.Enqueued).
			Dur("took", time.Since(started)).
			Msg("lifecycle sweep done")
		return nil
	})
}

// RegisterSendWarningTask binds the dormancy warning handler.
func RegisterSendWarningTask(srv qport.Server, uc *usecase.SendWarningUseCase, log zerolog.Logger) {
	srv.Register(usecase.SendWarningTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.WarningPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return fmt.Errorf("%w: decode warning payload: %v", qport.ErrSkipRetry, err)
		}
		sent, err := uc.Execute(ctx, p.Ref())
		if errors.Is(err, profile.ErrNotFound) || errors.Is(err, profile.ErrInvalidKind) {
			return fmt.Errorf("%w: %v", qport.ErrSkipRetry, err)
		}
		if err != nil {
			return err
		}
		log.Debug().Str("profile", p.Ref().String()).Bool("sent", sent).Msg("dormancy warning handled")
		return nil
	})
}
