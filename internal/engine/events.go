package engine

import "dotc_server/internal/domain"

// Event - исходящее событие комнаты. Broadcaster доставляет его всем
// участникам; движок гарантирует только то, что событие отправлено после
// коммита состояния.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Broadcaster - внешний коллаборатор, рассылающий события комнаты.
// Ошибки доставки - его зона ответственности.
type Broadcaster interface {
	Broadcast(roomID string, evt Event)
}

// окно прерывания открыто
func evtEventStarted(p *domain.PendingAction) Event {
	return Event{Type: "EVENT_STARTED", Payload: map[string]any{
		"action_id":     p.ID,
		"initiator_id":  p.InitiatorID,
		"kind":          p.Kind,
		"card_id":       p.CardID,
		"set_id":        p.SetID,
		"deadline_unix": p.Deadline.Unix(),
	}}
}

func evtEventCancelled(cancellerID int64) Event {
	return Event{Type: "EVENT_CANCELLED", Payload: map[string]any{
		"canceller_id": cancellerID,
	}}
}

// периодический тик, чисто информационный
func evtCountdownTick(remaining int) Event {
	return Event{Type: "COUNTDOWN_TICK", Payload: map[string]any{
		"time": remaining,
	}}
}

func evtCountdownEnd(finalState string) Event {
	return Event{Type: "COUNTDOWN_END", Payload: map[string]any{
		"final_state": finalState,
	}}
}

func evtStartVotation(v *domain.VoteRound) Event {
	return Event{Type: "startVotation", Payload: map[string]any{
		"round_id":         v.ID,
		"initiator_id":     v.InitiatorID,
		"card_id":          v.CardID,
		"eligible_voters":  v.EligibleVoters,
		"current_voter_id": v.CurrentVoter(),
	}}
}

func evtCurrentVoter(voterID int64) Event {
	return Event{Type: "currentVoter", Payload: map[string]any{
		"voter_id": voterID,
	}}
}

func evtRegisterVotes(closed bool) Event {
	return Event{Type: "RegisterVotes", Payload: map[string]any{
		"closed": closed,
	}}
}

func evtPlayerSuspicious(accusedID int64) Event {
	return Event{Type: "playerSuspicious", Payload: map[string]any{
		"accused_id": accusedID,
	}}
}

// RoomLock отпущен; идемпотентный сигнал для наблюдателей
func evtGameUnlock() Event {
	return Event{Type: "gameUnlock", Payload: map[string]any{}}
}

// секрет сменил состояние или владельца (коммит уже выполнен)
func evtSecretUpdate(s domain.SecretCard) Event {
	return Event{Type: "secretUpdate", Payload: s}
}

func evtCardDiscarded(playerID, cardID int64) Event {
	return Event{Type: "cardDiscarded", Payload: map[string]any{
		"player_id": playerID,
		"card_id":   cardID,
	}}
}

func evtSetPlayed(set *domain.DetectiveSet) Event {
	return Event{Type: "setPlayed", Payload: set}
}

func evtSetUpdated(set *domain.DetectiveSet) Event {
	return Event{Type: "setUpdated", Payload: set}
}
