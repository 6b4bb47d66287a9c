package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// SendMessageInput carries the data needed to send a new message
type SendMessageInput struct {
	RoomKey string
	Sender  profile.Ref
	Text    string
}

// SendMessageOutput is the durably stored message and the id of the participant to notify.
type SendMessageOutput struct {
	Message   chat.Message
	Recipient string
}

// SendMessageUseCase validates and persists a message. It returns only after the write is durable;
// delivery is the caller's job.
type SendMessageUseCase struct {
	Repo     repository.ChatRepository
	Profiles ProfileResolver
}

func NewSendMessageUseCase(repo repository.ChatRepository, profiles ProfileResolver) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Profiles: profiles}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (SendMessageOutput, error) {
	key, err := chat.ParseRoomKey(in.RoomKey)
	if err != nil {
		return SendMessageOutput{}, err
	}
	msg, err := chat.NewMessage(key, in.Sender.ID, in.Text)
	if err != nil {
		return SendMessageOutput{}, err
	}
	recipient, err := key.Partner(in.Sender.ID)
	if err != nil {
		return SendMessageOutput{}, err
	}

	conv, err := uc.Repo.FindConversationByRoomKey(ctx, key)
	switch {
	case errors.Is(err, chat.ErrNotFound):
		conv, err = uc.newConversation(ctx, key, in.Sender, recipient)
		if err != nil {
			return SendMessageOutput{}, err
		}
	case err != nil:
		return SendMessageOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	stored, err := uc.Repo.AppendMessage(ctx, conv, msg)
	if err != nil {
		return SendMessageOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return SendMessageOutput{Message: stored, Recipient: recipient}, nil
}

// newConversation describes the first conversation between sender and recipient. The recipient
// must exist in one of the directories.
func (uc *SendMessageUseCase) newConversation(ctx context.Context, key chat.RoomKey, sender profile.Ref, recipient string) (chat.Conversation, error) {
	partner, err := uc.Profiles.ExecuteByID(ctx, recipient)
	if errors.Is(err, profile.ErrNotFound) {
		return chat.Conversation{}, err
	}
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return chat.Conversation{
		RoomKey:      key,
		Participants: chat.OrderParticipants(sender, partner.Ref),
	}, nil
}
