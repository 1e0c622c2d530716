package domain

import "time"

// Вид отложенного действия: решает только пост-диспатч, не правила отмены
type PendingKind string

const (
	PendingEventCard       PendingKind = "event-card"
	PendingDetectiveEffect PendingKind = "detective-effect"
)

type PendingState string

const (
	PendingOpen      PendingState = "open"
	PendingCancelled PendingState = "cancelled"
	PendingResolved  PendingState = "resolved"
)

// PendingAction - действие, ожидающее окончания окна прерывания.
// Ровно одно может быть открыто в комнате (RoomLock).
type PendingAction struct {
	ID          string       `json:"id"`
	Kind        PendingKind  `json:"kind"`
	InitiatorID int64        `json:"initiator_id"`
	State       PendingState `json:"state"`
	Deadline    time.Time    `json:"deadline"`

	// payload: движок не интерпретирует его до резолва
	CardID      *int64  `json:"card_id,omitempty"`       // сыгранная карта события
	SetID       *string `json:"set_id,omitempty"`        // сет, чей эффект применяется
	TargetSetID *string `json:"target_set_id,omitempty"` // цель эффекта (опционально)
	// для детективных эффектов: выбранный секрет и его владелец
	TargetSecretID *int64 `json:"target_secret_id,omitempty"`
	TargetPlayerID *int64 `json:"target_player_id,omitempty"`
}

func (p *PendingAction) IsOpen() bool {
	return p.State == PendingOpen
}
