package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"veriflow/internal/domain"
	"veriflow/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are handled at the CORS layer; the token query param
	// is the actual authentication here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	log        *zap.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, log *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService, log: log}
}

// HandleWebSocket upgrades GET /ws/notifications?token=JWT to a live
// notification stream. Auth rides in the query string because browsers
// cannot set headers on websocket handshakes.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required. Use ?token=YOUR_JWT_TOKEN",
		})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	userID := claims.UserID
	h.hub.Register(userID, domain.UserRole(claims.Role), conn)
	h.log.Info("websocket connected", zap.Int64("user_id", userID))

	defer func() {
		h.hub.Unregister(userID)
		h.log.Info("websocket disconnected", zap.Int64("user_id", userID))
	}()

	_ = conn.WriteJSON(domain.Event{
		Type:      domain.EventConnectionEstablished,
		Message:   "Connected to notification stream",
		Timestamp: time.Now(),
	})

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	go h.pingLoop(conn)
	h.readLoop(conn, userID)
}

func (h *WSHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

// readLoop drains client frames. The stream is server-to-client; the only
// client message understood is a text "PING" keep-alive.
func (h *WSHandler) readLoop(conn *websocket.Conn, userID int64) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket read error",
					zap.Int64("user_id", userID), zap.Error(err))
			}
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if string(raw) == "PING" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte("PONG"))
		}
	}
}
