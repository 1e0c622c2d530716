package repository

import (
	"context"

	"dotc_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CardRepository struct {
	db *pgxpool.Pool
}

func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

// возвращает карту по ID
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	var c domain.Card
	err := r.db.QueryRow(ctx,
		`SELECT id, name, kind, COALESCE(image_url, ''), owner_id
		 FROM cards
		 WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Kind, &c.ImageURL, &c.OwnerID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// возвращает руку игрока в партии
func (r *CardRepository) GetByOwner(ctx context.Context, gameID string, ownerID int64) ([]domain.Card, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, kind, COALESCE(image_url, ''), owner_id
		 FROM cards
		 WHERE game_id = $1 AND owner_id = $2
		 ORDER BY id`,
		gameID, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.ImageURL, &c.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// фиксирует смену владельца; NULL означает сброс/общую колоду
func (r *CardRepository) SetOwner(ctx context.Context, cardID int64, ownerID *int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE cards SET owner_id = $2, updated_at = now() WHERE id = $1`,
		cardID, ownerID,
	)
	return err
}

// журнал переносов: каждая смена владельца атомарна и логируется
func (r *CardRepository) RecordTransfer(ctx context.Context, t domain.OwnershipTransfer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO card_transfers (card_id, from_player, to_player, occurred_at)
		 VALUES ($1, $2, $3, $4)`,
		t.CardID, t.FromPlayer, t.ToPlayer, t.OccurredAt,
	)
	return err
}
