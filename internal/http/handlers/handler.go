package handlers

import (
	"dotc_server/internal/repository"
	"dotc_server/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler - зависимости REST-эндпоинтов
type Handler struct {
	DB       *pgxpool.Pool
	Hub      *ws.Hub
	Players  *repository.PlayerRepository
	BotToken string
	Version  string
}

func New(db *pgxpool.Pool, hub *ws.Hub, botToken, version string) *Handler {
	return &Handler{
		DB:       db,
		Hub:      hub,
		Players:  repository.NewPlayerRepository(db),
		BotToken: botToken,
		Version:  version,
	}
}
