package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"taskboard/internal/auth"
	"taskboard/internal/logger"
)

// HandleWS upgrades an authenticated request into a procedure socket.
// allowedOrigin empty accepts any origin.
func HandleWS(hub *Hub, dispatcher *Dispatcher, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		id, ok := auth.FromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("ws upgrade error", "error", err)
			return
		}

		// the socket outlives the request; keep its values, drop its cancel
		ctx := context.WithoutCancel(c.Request.Context())
		client := NewClient(ctx, id.UserID, conn, hub, dispatcher)
		go client.Run()
	}
}
