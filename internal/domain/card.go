package domain

import "time"

// Виды карт в колоде
type CardKind string

const (
	KindDetective CardKind = "detective" // главный детектив
	KindWildcard  CardKind = "wildcard"  // джокер (Harley Quin) и агрегатор (Ariadne Oliver)
	KindEvent     CardKind = "event"
	KindSecret    CardKind = "secret"
	KindInstant   CardKind = "instant" // контр-карта Not So Fast
)

// Эффект сыгранного детективного сета
type ActionSecret string

const (
	ActionRevealYour  ActionSecret = "reveal_your"
	ActionRevealTheir ActionSecret = "reveal_their"
	ActionHide        ActionSecret = "hide"
)

type Card struct {
	ID       int64    `db:"id" json:"id"`
	Name     string   `db:"name" json:"name"`
	Kind     CardKind `db:"kind" json:"kind"`
	ImageURL string   `db:"image_url" json:"image_url,omitempty"`
	// nil пока карта лежит в общей колоде
	OwnerID *int64 `db:"owner_id" json:"owner_id,omitempty"`
}

// MainDetectivePair помечает специальный сет из двух разных Бересфордов
const MainDetectivePair = "PAIR"

type DetectiveSet struct {
	ID            string       `db:"id" json:"id"`
	MainDetective string       `db:"main_detective" json:"main_detective"`
	CardIDs       []int64      `db:"card_ids" json:"card_ids"`
	ActionSecret  ActionSecret `db:"action_secret" json:"action_secret"`
	IsCancellable bool         `db:"is_cancellable" json:"is_cancellable"`
	// тег эффекта джокера (например "Satterthwaite"), nil если джокер не прикреплён
	WildcardEffect *string `db:"wildcard_effect" json:"wildcard_effect,omitempty"`
	OwnerID        int64   `db:"owner_id" json:"owner_id"`
}

// Contains сообщает, входит ли карта в сет
func (s *DetectiveSet) Contains(cardID int64) bool {
	for _, id := range s.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

type SecretCard struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	OwnerID      int64  `db:"owner_id" json:"owner_id"`
	IsRevealed   bool   `db:"is_revealed" json:"is_revealed"`
	IsMurderer   bool   `db:"is_murderer" json:"is_murderer"`
	IsAccomplice bool   `db:"is_accomplice" json:"is_accomplice"`
}

// Запись о смене владельца карты (каждый перенос атомарен и логируется)
type OwnershipTransfer struct {
	CardID     int64     `db:"card_id" json:"card_id"`
	FromPlayer int64     `db:"from_player" json:"from_player"`
	ToPlayer   int64     `db:"to_player" json:"to_player"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
