package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shawarmaKoders/Hedwig/internal/config"
	"github.com/shawarmaKoders/Hedwig/internal/relay"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
	"github.com/shawarmaKoders/Hedwig/pkg/log"
)

// WSHandler upgrades participant connections and runs their sessions.
type WSHandler struct {
	deps     relay.Deps
	upgrader websocket.Upgrader
	wsCfg    config.WebSocketConfig
}

func NewWSHandler(deps relay.Deps, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsCfg.ReadBufferSize,
			WriteBufferSize: wsCfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		wsCfg: wsCfg,
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/:room_id/:user_id", h.HandleWebSocket)
}

// HandleWebSocket runs one session from upgrade to socket close. The
// handshake pushes history before the subscription starts; a failed
// handshake closes the socket without ever reaching the active state.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := c.Param("user_id")
	l := log.Ctx(c.Request.Context()).With().
		Str(log.FieldRoomID, roomID).
		Str(log.FieldUserID, userID).
		Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if h.wsCfg.MaxMessageSize > 0 {
		conn.SetReadLimit(h.wsCfg.MaxMessageSize)
	}

	// The session outlives the request handler's context machinery; it
	// ends when the socket does.
	ctx := log.WithLogger(context.Background(), l)

	sess := relay.NewSession(userID, roomID, conn, h.deps)
	if err := sess.Connect(ctx); err != nil {
		l.Warn().Err(err).Msg("session handshake refused")
		code := websocket.CloseInternalServerErr
		if errors.Is(err, repository.ErrRoomNotFound) ||
			errors.Is(err, relay.ErrRoomInactive) ||
			errors.Is(err, relay.ErrNotParticipant) {
			code = websocket.ClosePolicyViolation
		}
		msg := websocket.FormatCloseMessage(code, "")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		return
	}

	sess.Run(ctx)
}
