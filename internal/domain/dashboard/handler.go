package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /api/v1/dashboard
func (h *Handler) Get(c *gin.Context) {
	data, err := h.service.For(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load dashboard")
		return
	}
	response.Success(c, http.StatusOK, data)
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/dashboard", h.Get)
}
