package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/identity"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/realtime"
	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
// It runs behind identity.RequireAuth, so an unauthenticated upgrade never reaches it.
type ChatSocketController struct {
	router          *realtime.Router
	fanout          *Fanout
	sendMessageUC   *usecase.SendMessageUseCase
	joinRoomUC      *usecase.JoinConversationUseCase
	inflightTimeout time.Duration
	log             zerolog.Logger
}

func NewChatSocketController(router *realtime.Router, fanout *Fanout, send *usecase.SendMessageUseCase, join *usecase.JoinConversationUseCase, log zerolog.Logger) *ChatSocketController {
	return &ChatSocketController{
		router:          router,
		fanout:          fanout,
		sendMessageUC:   send,
		joinRoomUC:      join,
		inflightTimeout: 5 * time.Second,
		log:             log,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Credentials are checked before the upgrade; origin is not used for access control.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	frameJoinRoom    = "join_room"
	frameLeaveRoom   = "leave_room"
	frameSendMessage = "send_message"
)

type inboundFrame struct {
	Type    string `json:"type"`
	RoomKey string `json:"room_key,omitempty"`
	Text    string `json:"text,omitempty"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	RoomKey string `json:"room_key,omitempty"`
}

type ackFrame struct {
	Type      string `json:"type"`
	RoomKey   string `json:"room_key,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
}

const (
	defaultReadTimeout = 60 * time.Second
	maxFrameBytes      = 64 << 10
)

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		// the handshake may name the profile explicitly; it must be the verified one
		if claimed := c.Query("profile_id"); claimed != "" && claimed != id.ProfileID {
			c.JSON(http.StatusForbidden, gin.H{"error": "profile_id does not match credential"})
			return
		}
		sender := profile.Ref{Kind: profile.Kind(id.Role), ID: id.ProfileID}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		conn := realtime.NewConnection(id.ProfileID, ws)
		ctl.router.Attach(conn)
		log := ctl.log.With().Str("profile_id", id.ProfileID).Str("session_id", conn.ID).Logger()
		log.Info().Int("sessions", ctl.router.Sessions(id.ProfileID)).Msg("connection attached")
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			log.Info().Msg("connection detached")
		}()

		ws.SetReadLimit(maxFrameBytes)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected", ProfileID: id.ProfileID})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					log.Debug().Err(err).Msg("read loop ended")
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, codeBadRequest, "invalid payload", "")
				continue
			}

			switch frame.Type {
			case frameJoinRoom:
				ctl.handleJoin(c.Request.Context(), conn, frame)
			case frameLeaveRoom:
				ctl.handleLeave(conn, frame)
			case frameSendMessage:
				ctl.handleMessage(c.Request.Context(), conn, sender, frame)
			default:
				ctl.replyError(conn, codeUnsupported, "unknown frame type", "")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(ctx context.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	key, err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		RoomKey:   frame.RoomKey,
		ProfileID: conn.ProfileID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err, frame.RoomKey)
		return
	}

	ctl.router.Join(key.String(), conn)
	ctl.reply(conn, ackFrame{Type: "joined", RoomKey: key.String()})
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	key, err := chat.ParseRoomKey(frame.RoomKey)
	if err != nil {
		ctl.handleUseCaseError(conn, err, frame.RoomKey)
		return
	}
	ctl.router.Leave(key.String(), conn)
	ctl.reply(conn, ackFrame{Type: "left", RoomKey: key.String()})
}

// handleMessage persists first and fans out only after the write succeeded.
// Failures are reported to this connection alone.
func (ctl *ChatSocketController) handleMessage(ctx context.Context, conn *realtime.Connection, sender profile.Ref, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		RoomKey: frame.RoomKey,
		Sender:  sender,
		Text:    frame.Text,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrPersistence) {
			ctl.log.Error().Err(err).Str("profile_id", sender.ID).Str("room", frame.RoomKey).Msg("message not persisted")
		}
		ctl.handleUseCaseError(conn, err, frame.RoomKey)
		return
	}

	ctl.fanout.Deliver(ctx, out)
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error, roomKey string) {
	code, _, msg := classify(err)
	ctl.replyError(conn, code, msg, roomKey)
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string, roomKey string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Error: message, RoomKey: roomKey})
}

func (ctl *ChatSocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
