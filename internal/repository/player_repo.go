package repository

import (
	"context"

	"dotc_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	var p domain.Player
	err := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(avatar_url, ''), created_at
		 FROM players
		 WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO players (name, avatar_url)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		p.Name, p.AvatarURL,
	).Scan(&p.ID, &p.CreatedAt)
}

// Upsert заводит игрока с внешним ID (Telegram) или обновляет профиль
func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO players (id, name, avatar_url)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = $2, avatar_url = $3`,
		p.ID, p.Name, p.AvatarURL,
	)
	return err
}

// SeatOrder возвращает места партии в порядке ходов; этот порядок задаёт
// и очередность голосования
func (r *PlayerRepository) SeatOrder(ctx context.Context, gameID string) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx,
		`SELECT game_id, player_id, position
		 FROM game_players
		 WHERE game_id = $1
		 ORDER BY position ASC`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.GameID, &s.PlayerID, &s.Position); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Join сажает игрока за стол на указанную позицию
func (r *PlayerRepository) Join(ctx context.Context, seat domain.Seat) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_players (game_id, player_id, position)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (game_id, player_id) DO UPDATE SET position = $3`,
		seat.GameID, seat.PlayerID, seat.Position,
	)
	return err
}
