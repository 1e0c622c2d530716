package db

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect создаёт пул соединений и проверяет его пингом.
// Ошибка подключения фатальна: без БД серверу нечего обслуживать
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: не удалось создать пул: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("db: ping не прошёл: %v", err)
	}

	log.Println("db: подключение установлено")
	return pool
}
