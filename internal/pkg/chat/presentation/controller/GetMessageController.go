package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// GetMessageController handles fetching the history of a room (one controller per endpoint)
type GetMessageController struct {
	UC *usecase.GetMessageUseCase
}

func NewGetMessageController(uc *usecase.GetMessageUseCase) *GetMessageController {
	return &GetMessageController{UC: uc}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterRef(c)
		if !ok {
			return
		}
		limit, offset := pageParams(c)

		in := usecase.GetMessageInput{
			RoomKey:     c.Param("roomKey"),
			RequesterID: requester.ID,
			Limit:       limit,
			Offset:      offset,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, in)
		if err != nil {
			handleUseCaseError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": msgs,
			"limit":    limit,
			"offset":   offset,
			"count":    len(msgs),
		})
	}
}

func pageParams(c *gin.Context) (int, int) {
	limit := defaultPageLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
