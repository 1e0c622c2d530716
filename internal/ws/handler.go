package ws

import (
	"log"
	"net/http"
	"os"

	"dotc_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// содержит зависимости для обработки WebSocket
type WSHandler struct {
	Hub *Hub
}

func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{Hub: hub}
}

func (h *WSHandler) HandleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "токен обязателен"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный токен"})
			return
		}

		roomID := c.Query("room")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "комната обязательна"})
			return
		}

		room, err := h.Hub.GetOrCreateRoom(c.Request.Context(), roomID)
		if err != nil {
			log.Printf("HandleWS: не удалось поднять комнату=%s: %v", roomID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "комната недоступна"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ошибка обновления ws:", err)
			return
		}

		client := NewClient(playerID, conn, h.Hub, room)
		go client.Run()
	}
}
