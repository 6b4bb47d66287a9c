package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// OpenConversationInput identifies the requester and the profile they want to talk to.
type OpenConversationInput struct {
	Requester profile.Ref
	Target    profile.Ref
	Limit     int
}

// OpenConversationOutput is the conversation with its resolved partner and latest history page.
type OpenConversationOutput struct {
	Conversation chat.Conversation
	Partner      profile.Profile
	Messages     []chat.Message
}

// OpenConversationUseCase gets or creates the conversation between two profiles.
type OpenConversationUseCase struct {
	Repo     repository.ChatRepository
	Profiles ProfileResolver
}

func NewOpenConversationUseCase(repo repository.ChatRepository, profiles ProfileResolver) *OpenConversationUseCase {
	return &OpenConversationUseCase{Repo: repo, Profiles: profiles}
}

func (uc *OpenConversationUseCase) Execute(ctx context.Context, in OpenConversationInput) (OpenConversationOutput, error) {
	key, err := chat.NewRoomKey(in.Requester.ID, in.Target.ID)
	if err != nil {
		return OpenConversationOutput{}, err
	}

	partner, err := uc.resolveTarget(ctx, in.Target)
	if err != nil {
		return OpenConversationOutput{}, err
	}

	conv, err := uc.Repo.EnsureConversation(ctx, chat.Conversation{
		RoomKey:      key,
		Participants: chat.OrderParticipants(in.Requester, partner.Ref),
	})
	if err != nil {
		return OpenConversationOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs, err := uc.Repo.GetMessagesByConversation(ctx, key, in.Limit, 0)
	if err != nil {
		return OpenConversationOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return OpenConversationOutput{Conversation: conv, Partner: partner, Messages: msgs}, nil
}

func (uc *OpenConversationUseCase) resolveTarget(ctx context.Context, target profile.Ref) (profile.Profile, error) {
	var (
		p   profile.Profile
		err error
	)
	if target.Kind == "" {
		p, err = uc.Profiles.ExecuteByID(ctx, target.ID)
	} else {
		p, err = uc.Profiles.Execute(ctx, target)
	}
	if err == nil || errors.Is(err, profile.ErrNotFound) || errors.Is(err, profile.ErrInvalidKind) {
		return p, err
	}
	return profile.Profile{}, fmt.Errorf("%w: %v", ErrPersistence, err)
}
