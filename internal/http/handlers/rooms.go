package handlers

import (
	"net/http"

	"dotc_server/internal/deck"
	"dotc_server/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.Version})
}

// Rooms - срез активных комнат (для фронта и отладки)
func (h *Handler) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Hub.Status()})
}

// PreviewSet - проверка комбинации без изменения стола: фронт подсвечивает
// кнопку "сыграть" до фактического интента. Карты описываются именами,
// ID здесь не важны
func (h *Handler) PreviewSet(c *gin.Context) {
	var req struct {
		Cards []string `json:"cards"`
	}
	if err := c.BindJSON(&req); err != nil || len(req.Cards) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cards обязательны"})
		return
	}

	cards := make([]domain.Card, len(req.Cards))
	for i, name := range req.Cards {
		cards[i] = domain.Card{ID: int64(i + 1), Name: name, Kind: domain.KindDetective}
	}

	set, err := deck.ValidateNewSet(cards)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": err.Error()})
		return
	}

	resp := gin.H{
		"valid":          true,
		"main_detective": set.MainDetective,
		"action_secret":  set.ActionSecret,
		"is_cancellable": set.IsCancellable,
	}
	if set.WildcardEffect != nil {
		resp["wildcard_effect"] = *set.WildcardEffect
	}
	c.JSON(http.StatusOK, resp)
}
