package usecase

import (
	"context"
	"fmt"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
)

// GetMessageInput carries parameters to fetch messages of a conversation
type GetMessageInput struct {
	RoomKey     string
	RequesterID string
	Limit       int
	Offset      int
}

// GetMessageUseCase fetches the chronological history of a room for one of its participants.
type GetMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessageUseCase(repo repository.ChatRepository) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	key, err := chat.ParseRoomKey(in.RoomKey)
	if err != nil {
		return nil, err
	}
	if !key.Has(in.RequesterID) {
		return nil, chat.ErrNotParticipant
	}
	msgs, err := uc.Repo.GetMessagesByConversation(ctx, key, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
