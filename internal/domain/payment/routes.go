package payment

import "github.com/gin-gonic/gin"

// RegisterRoutes registers payment routes for authenticated users.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.List)
		payments.POST("", writeLimit, h.Submit)
		payments.GET("/:id", h.Get)
	}
	rg.GET("/bookings/:id/payments", h.ListForBooking)
}

// RegisterAdminRoutes registers payment review.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/payments/:id", h.Review)
}
