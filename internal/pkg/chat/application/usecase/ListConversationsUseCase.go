package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// ListConversationsInput names the profile whose conversation list is requested.
type ListConversationsInput struct {
	ProfileID string
}

// ConversationSummary is one row of a profile's conversation list with the partner resolved.
type ConversationSummary struct {
	ConversationID string
	RoomKey        chat.RoomKey
	Partner        profile.Profile
	LastMessage    *string
	LastSenderID   *string
	LastTimestamp  *time.Time
}

// ConversationLister is satisfied by both listing strategies so presentation can serve either.
type ConversationLister interface {
	Execute(ctx context.Context, in ListConversationsInput) ([]ConversationSummary, error)
}

// ListConversationsUseCase lists canonical conversations, newest activity first.
type ListConversationsUseCase struct {
	Repo     repository.ChatRepository
	Profiles ProfileResolver
}

func NewListConversationsUseCase(repo repository.ChatRepository, profiles ProfileResolver) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Profiles: profiles}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationSummary, error) {
	if in.ProfileID == "" {
		return nil, chat.ErrNotParticipant
	}
	convs, err := uc.Repo.ListConversationsForProfile(ctx, in.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		ref, ok := c.Partner(in.ProfileID)
		if !ok {
			continue
		}
		partner, err := uc.Profiles.ExecuteOrPlaceholder(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		out = append(out, ConversationSummary{
			ConversationID: c.ID,
			RoomKey:        c.RoomKey,
			Partner:        partner,
			LastMessage:    c.LastMessage,
			LastSenderID:   c.LastSenderID,
			LastTimestamp:  c.LastMessageAt,
		})
	}
	return out, nil
}
