package usecase

import (
	"context"
	"fmt"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// ListRecentConversationsUseCase rebuilds the conversation list from the composite-key log and
// merges in canonical conversations, so threads started after migration still show up.
// It serves CONVERSATION_INDEX=legacy deployments whose history predates canonical conversations.
type ListRecentConversationsUseCase struct {
	Repo repository.LegacyMessageRepository
	// Conversations may be nil, leaving only the composite log.
	Conversations repository.ChatRepository
	Profiles      ProfileResolver
}

func NewListRecentConversationsUseCase(repo repository.LegacyMessageRepository, convs repository.ChatRepository, profiles ProfileResolver) *ListRecentConversationsUseCase {
	return &ListRecentConversationsUseCase{Repo: repo, Conversations: convs, Profiles: profiles}
}

func (uc *ListRecentConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationSummary, error) {
	if in.ProfileID == "" {
		return nil, chat.ErrNotParticipant
	}
	msgs, err := uc.Repo.ListLegacyMessagesForProfile(ctx, in.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	recent := chat.AggregateRecent(in.ProfileID, msgs)
	if uc.Conversations != nil {
		convs, err := uc.Conversations.ListConversationsForProfile(ctx, in.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		recent = chat.MergeRecent(in.ProfileID, recent, convs)
	}

	out := make([]ConversationSummary, 0, len(recent))
	for _, r := range recent {
		partner, err := uc.Profiles.ExecuteOrPlaceholder(ctx, profile.Ref{Kind: r.PartnerKind, ID: r.PartnerID})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		last, sender, ts := r.LastMessage, r.LastSenderID, r.LastTimestamp
		out = append(out, ConversationSummary{
			ConversationID: r.ConversationID,
			RoomKey:        r.RoomKey,
			Partner:        partner,
			LastMessage:    &last,
			LastSenderID:   &sender,
			LastTimestamp:  &ts,
		})
	}
	return out, nil
}
