package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"joylife/backend/internal/service"
	"joylife/backend/internal/timer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler pushes timer snapshots to connected browsers so every open tab
// shows the same countdown. Browsers cannot set an Authorization header on a
// WebSocket dial, so the JWT arrives as a query parameter instead.
type Handler struct {
	authService *service.AuthService
	timers      *timer.Manager
}

func NewHandler(authService *service.AuthService, timers *timer.Manager) *Handler {
	return &Handler{authService: authService, timers: timers}
}

// HandleTimer upgrades the connection and streams the user's timer state:
// one snapshot immediately, then one per engine mutation (ticks included).
func (h *Handler) HandleTimer(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "unauthorized", "message": "missing token"},
		})
		return
	}

	userID, apiErr := h.authService.ParseToken(token)
	if apiErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "unauthorized", "message": "invalid token"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	engine := h.timers.Engine(userID)
	client := newClient(conn)

	cancel := engine.Subscribe(func(snap timer.Snapshot) {
		client.enqueue(snap)
	})

	go client.writePump()
	go func() {
		client.readPump()
		cancel()
	}()

	client.enqueue(engine.Snapshot())
}
