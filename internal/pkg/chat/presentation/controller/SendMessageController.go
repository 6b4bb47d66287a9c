package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
)

// SendMessageController sends a message over HTTP for clients without a live connection.
// It runs the same persist-then-fan-out pipeline as the websocket path.
type SendMessageController struct {
	UC     *usecase.SendMessageUseCase
	fanout *Fanout
	log    zerolog.Logger
}

func NewSendMessageController(uc *usecase.SendMessageUseCase, fanout *Fanout, log zerolog.Logger) *SendMessageController {
	return &SendMessageController{UC: uc, fanout: fanout, log: log}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sender, ok := requesterRef(c)
		if !ok {
			return
		}
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			RoomKey: c.Param("roomKey"),
			Sender:  sender,
			Text:    req.Text,
		})
		if err != nil {
			h.log.Debug().Err(err).Str("profile_id", sender.ID).Msg("send message rejected")
			handleUseCaseError(c, err)
			return
		}

		h.fanout.Deliver(ctx, out)
		c.JSON(http.StatusCreated, out.Message)
	}
}
