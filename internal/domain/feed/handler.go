package feed

import (
	"github.com/gin-gonic/gin"

	"musicstudio/internal/middleware"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeWS handles GET /api/v1/ws/feed?token=JWT
func (h *Handler) ServeWS(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	conn, err := h.hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.hub.loggerf("level=warn msg=feed upgrade failed user_id=%d err=%v", actor.UserID, err)
		return
	}

	h.hub.serve(conn, actor)
}

func (h *Handler) RegisterRoutes(ws *gin.RouterGroup) {
	ws.GET("/feed", h.ServeWS)
}
