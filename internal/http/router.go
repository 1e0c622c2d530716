package http

import (
	"time"

	"dotc_server/internal/http/handlers"
	"dotc_server/internal/http/middleware"
	"dotc_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, dbPool *pgxpool.Pool, hub *ws.Hub, botToken, version string) {
	h := handlers.New(dbPool, hub, botToken, version)

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/auth", middleware.RateLimit(20, time.Minute), h.Auth)
	api.GET("/rooms", h.Rooms)
	api.POST("/sets/preview", middleware.RateLimit(120, time.Minute), h.PreviewSet)

	wsHandler := ws.NewWSHandler(hub)
	r.GET("/ws", wsHandler.HandleWS())
}
