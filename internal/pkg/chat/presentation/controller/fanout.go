package controller

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/realtime"
	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
)

const (
	frameReceiveMessage      = "receive_message"
	frameReceiveNotification = "receive_message_notification"
)

type messageFrame struct {
	Type    string       `json:"type"`
	Message chat.Message `json:"message"`
}

// Fanout delivers a stored message: the full event to the conversation room and a notification
// to the private room of the other participant. The sender's private room never gets one.
type Fanout struct {
	router *realtime.Router
	log    zerolog.Logger
}

func NewFanout(router *realtime.Router, log zerolog.Logger) *Fanout {
	return &Fanout{router: router, log: log}
}

// Deliver must only be called with the output of a successful SendMessageUseCase.
func (f *Fanout) Deliver(ctx context.Context, out usecase.SendMessageOutput) {
	room, err := json.Marshal(messageFrame{Type: frameReceiveMessage, Message: out.Message})
	if err != nil {
		f.log.Error().Err(err).Str("message_id", out.Message.ID).Msg("encode message frame")
		return
	}
	delivered := f.router.Emit(ctx, out.Message.RoomKey.String(), room)

	notified := 0
	if out.Recipient != "" && out.Recipient != out.Message.SenderID {
		notification, err := json.Marshal(messageFrame{Type: frameReceiveNotification, Message: out.Message})
		if err != nil {
			f.log.Error().Err(err).Str("message_id", out.Message.ID).Msg("encode notification frame")
			return
		}
		notified = f.router.Emit(ctx, out.Recipient, notification)
	}

	f.log.Debug().
		Str("room", out.Message.RoomKey.String()).
		Str("message_id", out.Message.ID).
		Int("delivered", delivered).
		Int("notified", notified).
		Msg("message fanned out")
}
