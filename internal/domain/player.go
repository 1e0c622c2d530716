package domain

import "time"

type Player struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Seat - место игрока за столом; позиция задаёт порядок ходов и голосования
type Seat struct {
	GameID   string `db:"game_id" json:"game_id"`
	PlayerID int64  `db:"player_id" json:"player_id"`
	Position int    `db:"position" json:"position"`
}
