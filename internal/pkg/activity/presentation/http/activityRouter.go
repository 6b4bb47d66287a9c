package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/identity"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/port"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/presentation/controller"
)

type Dependencies struct {
	Ledgers  repository.LedgerRepository
	Posts    repository.PostStore
	Verifier identity.Verifier
	Log      zerolog.Logger
}

// RegisterRoutes registers publishing and activity status endpoints under the given group.
func RegisterRoutes(g *gin.RouterGroup, deps Dependencies) {
	log := deps.Log.With().Str("component", "activity").Logger()

	publishCtl := controller.NewPublishPostController(usecase.NewPublishPostUseCase(deps.Ledgers, deps.Posts), log)
	statusCtl := controller.NewStatusController(usecase.NewGetStatusUseCase(deps.Ledgers))

	auth := identity.RequireAuth(deps.Verifier)

	// POST /api/v1/posts -> publish, subject to the posting cooldown
	g.POST("/posts", auth, publishCtl.Handle())

	// GET /api/v1/activity/status -> eligibility and dormancy countdown of the caller
	g.GET("/activity/status", auth, statusCtl.Handle())
}
