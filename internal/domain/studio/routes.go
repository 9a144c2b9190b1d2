package studio

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes registers read-only studio routes. Callers should attach
// middleware.OptionalJWT so admins get the unfiltered listing.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/studios", h.List)
	rg.GET("/studios/:id", h.Get)
}

// RegisterAdminRoutes registers studio inventory management.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/studios", h.Create)
	rg.PUT("/studios/:id", h.Update)
	rg.DELETE("/studios/:id", h.Delete)
}
