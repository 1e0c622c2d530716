package repository

import (
	"context"

	"dotc_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GameStore - реализация engine.Store поверх репозиториев; движок пишет
// через него асинхронно, не держа цикл комнаты
type GameStore struct {
	cards   *CardRepository
	secrets *SecretCardRepository
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{
		cards:   NewCardRepository(db),
		secrets: NewSecretCardRepository(db),
	}
}

func (s *GameStore) SaveCardOwner(ctx context.Context, cardID int64, ownerID *int64) error {
	return s.cards.SetOwner(ctx, cardID, ownerID)
}

func (s *GameStore) SaveSecretRevealed(ctx context.Context, cardID int64, revealed bool) error {
	return s.secrets.SetRevealed(ctx, cardID, revealed)
}

func (s *GameStore) RecordTransfer(ctx context.Context, t domain.OwnershipTransfer) error {
	return s.cards.RecordTransfer(ctx, t)
}
