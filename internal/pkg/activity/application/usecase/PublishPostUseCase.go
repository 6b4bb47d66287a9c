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

type PublishPostInput struct {
	Author  profile.Ref
	Content string
}

type PublishPostOutput struct {
	Post     activity.Post
	Standing activity.Standing
}

// PublishPostUseCase enforces the posting cooldown, then stores the post and resets the author's
// ledger in one write, reactivating an inactive profile. A rejected publish returns *activity.CooldownError.
type PublishPostUseCase struct {
	Ledgers repository.LedgerRepository
	Posts   repository.PostStore
	Now     func() time.Time
}

func NewPublishPostUseCase(ledgers repository.LedgerRepository, posts repository.PostStore) *PublishPostUseCase {
	return &PublishPostUseCase{Ledgers: ledgers, Posts: posts, Now: time.Now}
}

func (uc *PublishPostUseCase) Execute(ctx context.Context, in PublishPostInput) (PublishPostOutput, error) {
	now := uc.Now().UTC()
	post, err := activity.NewPost(in.Author, in.Content, now)
	if err != nil {
		return PublishPostOutput{}, err
	}

	ledger, err := uc.Ledgers.Get(ctx, in.Author)
	if errors.Is(err, profile.ErrNotFound) || errors.Is(err, profile.ErrInvalidKind) {
		return PublishPostOutput{}, err
	}
	if err != nil {
		return PublishPostOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := activity.CheckCooldown(ledger, now); err != nil {
		return PublishPostOutput{}, err
	}

	err = uc.Posts.PublishPost(ctx, post)
	if errors.Is(err, profile.ErrNotFound) {
		return PublishPostOutput{}, err
	}
	if err != nil {
		return PublishPostOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ledger.LastPostDate = &now
	ledger.OperatingStatus = activity.StatusActive
	return PublishPostOutput{Post: post, Standing: activity.Evaluate(ledger, now)}, nil
}
