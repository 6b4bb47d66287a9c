package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/identity"
	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

func handleUseCaseError(c *gin.Context, err error) {
	var cd *activity.CooldownError
	switch {
	case errors.As(err, &cd):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             err.Error(),
			"retry_after_days":  cd.RetryAfterDays,
			"retry_after_hours": cd.RetryAfterHours,
			"next_post_at":      cd.NextPostAt,
		})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable, try again"})
	case errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func requesterRef(c *gin.Context) (profile.Ref, bool) {
	id, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return profile.Ref{}, false
	}
	return profile.Ref{Kind: profile.Kind(id.Role), ID: id.ProfileID}, true
}
