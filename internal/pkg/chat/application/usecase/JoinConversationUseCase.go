package usecase

import (
	"context"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
)

// JoinAuthorizer decides whether a profile may subscribe to a conversation room.
type JoinAuthorizer interface {
	AuthorizeJoin(ctx context.Context, profileID string, key chat.RoomKey) error
}

// ParticipantAuthorizer admits only the two profiles encoded in the room key.
type ParticipantAuthorizer struct{}

func (ParticipantAuthorizer) AuthorizeJoin(_ context.Context, profileID string, key chat.RoomKey) error {
	if !key.Has(profileID) {
		return chat.ErrNotParticipant
	}
	return nil
}

// JoinConversationInput validates a request to attach a user session to a conversation.
type JoinConversationInput struct {
	RoomKey   string
	ProfileID string
}

// JoinConversationUseCase checks a join request before the realtime room is entered and returns the canonical key.
type JoinConversationUseCase struct {
	Authorizer JoinAuthorizer
}

// NewJoinConversationUseCase uses ParticipantAuthorizer when authorizer is nil.
func NewJoinConversationUseCase(authorizer JoinAuthorizer) *JoinConversationUseCase {
	if authorizer == nil {
		authorizer = ParticipantAuthorizer{}
	}
	return &JoinConversationUseCase{Authorizer: authorizer}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) (chat.RoomKey, error) {
	key, err := chat.ParseRoomKey(in.RoomKey)
	if err != nil {
		return "", err
	}
	if err := uc.Authorizer.AuthorizeJoin(ctx, in.ProfileID, key); err != nil {
		return "", err
	}
	return key, nil
}
