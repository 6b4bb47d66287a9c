package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
)

// PublishPostController publishes a post for the caller's profile.
type PublishPostController struct {
	UC  *usecase.PublishPostUseCase
	log zerolog.Logger
}

func NewPublishPostController(uc *usecase.PublishPostUseCase, log zerolog.Logger) *PublishPostController {
	return &PublishPostController{UC: uc, log: log}
}

type publishPostRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *PublishPostController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		author, ok := requesterRef(c)
		if !ok {
			return
		}
		var req publishPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.PublishPostInput{Author: author, Content: req.Content})
		if err != nil {
			h.log.Debug().Err(err).Str("profile", author.String()).Msg("publish rejected")
			handleUseCaseError(c, err)
			return
		}
		h.log.Info().Str("profile", author.String()).Str("post_id", out.Post.ID).Msg("post published")
		c.JSON(http.StatusCreated, gin.H{"post": out.Post, "status": out.Standing})
	}
}
