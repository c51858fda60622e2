package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shawarmaKoders/Hedwig/internal/history"
	"github.com/shawarmaKoders/Hedwig/pkg/response"
)

// HistoryHandler serves a room's message history over HTTP, same shape
// as the on-join websocket frame.
type HistoryHandler struct {
	loader *history.Loader
}

func NewHistoryHandler(loader *history.Loader) *HistoryHandler {
	return &HistoryHandler{loader: loader}
}

func (h *HistoryHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/chat-room/:room_id/messages", h.GetMessages)
}

func (h *HistoryHandler) GetMessages(c *gin.Context) {
	entries, err := h.loader.Load(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		response.InternalError(c, "failed to load history")
		return
	}

	response.Success(c, entries)
}
