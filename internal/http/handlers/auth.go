package handlers

import (
	"encoding/json"
	"net/http"

	"dotc_server/internal/domain"
	"dotc_server/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth проверяет Telegram WebApp init_data, заводит игрока и выдаёт JWT
func (h *Handler) Auth(c *gin.Context) {
	var req struct {
		InitData string `json:"init_data"`
	}
	if err := c.BindJSON(&req); err != nil || req.InitData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data обязателен"})
		return
	}

	values, ok := service.ValidateTelegramInitData(req.InitData, h.BotToken)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "невалидные init_data"})
		return
	}

	var tgUser struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		Username  string `json:"username"`
		PhotoURL  string `json:"photo_url"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &tgUser); err != nil || tgUser.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "нет данных пользователя"})
		return
	}

	name := tgUser.Username
	if name == "" {
		name = tgUser.FirstName
	}
	player := &domain.Player{ID: tgUser.ID, Name: name, AvatarURL: tgUser.PhotoURL}
	if err := h.Players.Upsert(c.Request.Context(), player); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	token, err := service.GenerateJWT(player.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выдать токен"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "player_id": player.ID})
}
