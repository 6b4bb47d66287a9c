package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
)

type StatusController struct {
	UC *usecase.GetStatusUseCase
}

func NewStatusController(uc *usecase.GetStatusUseCase) *StatusController {
	return &StatusController{UC: uc}
}

func (h *StatusController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := requesterRef(c)
		if !ok {
			return
		}
		s, err := h.UC.Execute(c.Request.Context(), ref)
		if err != nil {
			handleUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}
