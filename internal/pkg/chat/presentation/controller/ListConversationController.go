package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
)

// ListConversationController serves the requester's conversation list from whichever
// index strategy it was built with.
type ListConversationController struct {
	UC usecase.ConversationLister
}

func NewListConversationController(uc usecase.ConversationLister) *ListConversationController {
	return &ListConversationController{UC: uc}
}

type conversationSummaryResponse struct {
	ConversationID string     `json:"conversation_id"`
	RoomKey        string     `json:"room_key"`
	PartnerID      string     `json:"partner_id"`
	PartnerKind    string     `json:"partner_kind,omitempty"`
	PartnerName    string     `json:"partner_name"`
	PartnerLogo    *string    `json:"partner_logo"`
	LastMessage    *string    `json:"last_message"`
	LastSenderID   *string    `json:"last_sender_id"`
	LastTimestamp  *time.Time `json:"last_timestamp"`
}

func (h *ListConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterRef(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{ProfileID: requester.ID})
		if err != nil {
			handleUseCaseError(c, err)
			return
		}

		out := make([]conversationSummaryResponse, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, conversationSummaryResponse{
				ConversationID: s.ConversationID,
				RoomKey:        s.RoomKey.String(),
				PartnerID:      s.Partner.Ref.ID,
				PartnerKind:    string(s.Partner.Ref.Kind),
				PartnerName:    s.Partner.Name,
				PartnerLogo:    s.Partner.LogoURL,
				LastMessage:    s.LastMessage,
				LastSenderID:   s.LastSenderID,
				LastTimestamp:  s.LastTimestamp,
			})
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
