package repository

import (
	"context"

	"dotc_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SecretCardRepository struct {
	db *pgxpool.Pool
}

func NewSecretCardRepository(db *pgxpool.Pool) *SecretCardRepository {
	return &SecretCardRepository{db: db}
}

// возвращает все секретные карты партии
func (r *SecretCardRepository) GetByGame(ctx context.Context, gameID string) ([]domain.SecretCard, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, owner_id, is_revealed, is_murderer, is_accomplice
		 FROM secret_cards
		 WHERE game_id = $1
		 ORDER BY id`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SecretCard
	for rows.Next() {
		var s domain.SecretCard
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &s.IsRevealed, &s.IsMurderer, &s.IsAccomplice); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// возвращает секреты игрока (для выбора раскрытия после голосования)
func (r *SecretCardRepository) GetByPlayer(ctx context.Context, playerID int64) ([]domain.SecretCard, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, owner_id, is_revealed, is_murderer, is_accomplice
		 FROM secret_cards
		 WHERE owner_id = $1
		 ORDER BY id`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SecretCard
	for rows.Next() {
		var s domain.SecretCard
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &s.IsRevealed, &s.IsMurderer, &s.IsAccomplice); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// фиксирует состояние reveal/hide после коммита в движке
func (r *SecretCardRepository) SetRevealed(ctx context.Context, cardID int64, revealed bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE secret_cards SET is_revealed = $2, updated_at = now() WHERE id = $1`,
		cardID, revealed,
	)
	return err
}
