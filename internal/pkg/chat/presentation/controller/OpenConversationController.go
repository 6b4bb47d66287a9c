package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// OpenConversationController gets or creates the conversation with a target profile.
type OpenConversationController struct {
	UC *usecase.OpenConversationUseCase
}

func NewOpenConversationController(uc *usecase.OpenConversationUseCase) *OpenConversationController {
	return &OpenConversationController{UC: uc}
}

type openConversationRequest struct {
	TargetID   string `json:"target_id" binding:"required"`
	TargetKind string `json:"target_kind"`
}

func (h *OpenConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterRef(c)
		if !ok {
			return
		}
		var req openConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		target := profile.Ref{ID: req.TargetID}
		if req.TargetKind != "" {
			kind, err := profile.ParseKind(req.TargetKind)
			if err != nil {
				handleUseCaseError(c, err)
				return
			}
			target.Kind = kind
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.OpenConversationInput{
			Requester: requester,
			Target:    target,
			Limit:     defaultPageLimit,
		})
		if err != nil {
			handleUseCaseError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation": out.Conversation,
			"partner":      out.Partner,
			"messages":     out.Messages,
		})
	}
}
