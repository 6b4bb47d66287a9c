package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/config"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/identity"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/realtime"
	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/presentation/controller"
)

// Dependencies are the collaborators the chat routes are built from.
type Dependencies struct {
	Repo     repository.ChatRepository
	Legacy   repository.LegacyMessageRepository
	Profiles usecase.ProfileResolver
	Router   *realtime.Router
	Verifier identity.Verifier
	// Authorizer gates join_room; nil admits only the profiles encoded in the room key.
	Authorizer usecase.JoinAuthorizer
	// Index selects the conversation listing strategy (config.IndexCanonical or config.IndexLegacy).
	Index string
	Log   zerolog.Logger
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Dependencies) {
	log := deps.Log.With().Str("component", "chat").Logger()

	sendUC := usecase.NewSendMessageUseCase(deps.Repo, deps.Profiles)
	fanout := controller.NewFanout(deps.Router, log)

	var lister usecase.ConversationLister = usecase.NewListConversationsUseCase(deps.Repo, deps.Profiles)
	if deps.Index == config.IndexLegacy && deps.Legacy != nil {
		lister = usecase.NewListRecentConversationsUseCase(deps.Legacy, deps.Repo, deps.Profiles)
	}

	socketCtl := controller.NewChatSocketController(deps.Router, fanout, sendUC, usecase.NewJoinConversationUseCase(deps.Authorizer), log)
	sendMsgCtl := controller.NewSendMessageController(sendUC, fanout, log)
	getMsgCtl := controller.NewGetMessageController(usecase.NewGetMessageUseCase(deps.Repo))
	listCtl := controller.NewListConversationController(lister)
	openCtl := controller.NewOpenConversationController(usecase.NewOpenConversationUseCase(deps.Repo, deps.Profiles))

	chat := g.Group("/chat", identity.RequireAuth(deps.Verifier))

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	chat.GET("/ws", socketCtl.Handle())

	// GET /api/v1/chat/conversations -> conversation list of the caller
	chat.GET("/conversations", listCtl.Handle())

	// POST /api/v1/chat/conversations -> get or create a conversation with a profile
	chat.POST("/conversations", openCtl.Handle())

	// GET /api/v1/chat/rooms/:roomKey/messages -> history of a room
	chat.GET("/rooms/:roomKey/messages", getMsgCtl.Handle())

	// POST /api/v1/chat/rooms/:roomKey/messages -> send without a live connection
	chat.POST("/rooms/:roomKey/messages", sendMsgCtl.Handle())
}
