package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertport "github.com/kanaksh-py/startup-backend/internal/infrastructure/alert/port"
	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// SendWarningUseCase re-reads the ledger and alerts only if the profile is still warned,
// so a publish between sweep and delivery cancels the alert.
type SendWarningUseCase struct {
	Ledgers repository.LedgerRepository
	Alerts  alertport.Sender
	Now     func() time.Time
}

func NewSendWarningUseCase(ledgers repository.LedgerRepository, alerts alertport.Sender) *SendWarningUseCase {
	return &SendWarningUseCase{Ledgers: ledgers, Alerts: alerts, Now: time.Now}
}

// Execute reports whether an alert was sent.
func (uc *SendWarningUseCase) Execute(ctx context.Context, ref profile.Ref) (bool, error) {
	ledger, err := uc.Ledgers.Get(ctx, ref)
	if errors.Is(err, profile.ErrNotFound) || errors.Is(err, profile.ErrInvalidKind) {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s := activity.Evaluate(ledger, uc.Now().UTC())
	if !s.Warned || s.DeactivationAt == nil {
		return false, nil
	}
	err = uc.Alerts.SendDormancyWarning(ctx, alertport.DormancyWarning{
		ProfileKind:           string(ref.Kind),
		ProfileID:             ref.ID,
		LastActivity:          ledger.Reference(),
		DaysUntilDeactivation: s.DaysUntilDeactivation,
		DeactivationAt:        *s.DeactivationAt,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
