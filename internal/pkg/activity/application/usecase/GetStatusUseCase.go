package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// GetStatusUseCase reports publish eligibility and dormancy countdown for a profile.
type GetStatusUseCase struct {
	Ledgers repository.LedgerRepository
	Now     func() time.Time
}

func NewGetStatusUseCase(ledgers repository.LedgerRepository) *GetStatusUseCase {
	return &GetStatusUseCase{Ledgers: ledgers, Now: time.Now}
}

func (uc *GetStatusUseCase) Execute(ctx context.Context, ref profile.Ref) (activity.Standing, error) {
	ledger, err := uc.Ledgers.Get(ctx, ref)
	if errors.Is(err, profile.ErrNotFound) || errors.Is(err, profile.ErrInvalidKind) {
		return activity.Standing{}, err
	}
	if err != nil {
		return activity.Standing{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return activity.Evaluate(ledger, uc.Now().UTC()), nil
}
