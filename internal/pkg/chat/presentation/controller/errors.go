package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/identity"
	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/usecase"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// Error codes carried by websocket error frames.
const (
	codeValidation  = "validation_error"
	codeForbidden   = "forbidden"
	codeNotFound    = "not_found"
	codePersistence = "persistence_error"
	codeBadRequest  = "bad_request"
	codeUnsupported = "unsupported_type"
)

// classify maps a use case error to a frame code, an HTTP status and a client-safe message.
func classify(err error) (string, int, string) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		return codePersistence, http.StatusInternalServerError, "storage unavailable, try again"
	case errors.Is(err, chat.ErrNotParticipant):
		return codeForbidden, http.StatusForbidden, "not a participant in this conversation"
	case errors.Is(err, profile.ErrNotFound):
		return codeNotFound, http.StatusNotFound, "profile not found"
	case errors.Is(err, chat.ErrInvalidRoomKey),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrMessageTooLong),
		errors.Is(err, profile.ErrInvalidKind):
		return codeValidation, http.StatusBadRequest, err.Error()
	default:
		return codeBadRequest, http.StatusBadRequest, err.Error()
	}
}

func handleUseCaseError(c *gin.Context, err error) {
	_, status, msg := classify(err)
	c.JSON(status, gin.H{"error": msg})
}

func requesterRef(c *gin.Context) (profile.Ref, bool) {
	id, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return profile.Ref{}, false
	}
	return profile.Ref{Kind: profile.Kind(id.Role), ID: id.ProfileID}, true
}
