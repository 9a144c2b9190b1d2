package booking

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes registers routes that need no authentication.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/studios/:id/availability", h.StudioAvailability)
}

// RegisterRoutes registers customer booking routes. writeLimit guards booking creation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("", h.List)
		bookings.POST("", writeLimit, h.Create)
		bookings.GET("/:id", h.Get)
		bookings.PUT("/:id", h.Update)
		bookings.DELETE("/:id", h.Cancel)
		bookings.POST("/:id/payment-proof", writeLimit, h.UploadProof)
		bookings.GET("/:id/payment-proof", h.DownloadProof)
	}
}

// RegisterAdminRoutes registers the admin status path.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
}
