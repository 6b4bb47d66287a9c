package v1

import (
	"github.com/gin-gonic/gin"

	activityHTTP "github.com/kanaksh-py/startup-backend/internal/pkg/activity/presentation/http"
	chatHTTP "github.com/kanaksh-py/startup-backend/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, chat chatHTTP.Dependencies, activity activityHTTP.Dependencies) {
	v1 := r.Group("/api/v1")
	chatHTTP.RegisterRoutes(v1, chat)
	activityHTTP.RegisterRoutes(v1, activity)
}
