package engine

import (
	"log"

	"github.com/google/uuid"

	"dotc_server/internal/deck"
	"dotc_server/internal/domain"
)

// Голосование "укажи подозреваемого": один круг по порядку ходов, ровно один
// голос на текущего голосующего. Таймаута нет - раунд всегда двигается вперёд,
// потому что индекс продвигает сам движок; голос за отключившегося игрока
// движок никогда не подставляет.

func (r *Room) startVote(initiatorID, cardID int64) error {
	if !r.seated(initiatorID) {
		return ErrUnknownPlayer
	}
	if r.lock.busy() {
		return ErrRoomBusy
	}
	card, ok := r.handCard(initiatorID, cardID)
	if !ok {
		return ErrUnknownCard
	}
	// голосование запускает только сама карта "укажи подозреваемого"
	if card.Kind != domain.KindEvent || card.Name != deck.CardPointYourSuspicion {
		return ErrUnknownCard
	}

	v := &domain.VoteRound{
		ID:             uuid.NewString(),
		InitiatorID:    initiatorID,
		CardID:         cardID,
		EligibleVoters: r.Seats(),
	}
	r.lock.vote = v
	log.Printf("Room.startVote: room=%s round=%s initiator=%d voters=%v", r.ID, v.ID, initiatorID, v.EligibleVoters)

	r.emit(evtStartVotation(v), evtCurrentVoter(v.CurrentVoter()))
	return nil
}

func (r *Room) castVote(voterID, accusedID int64) error {
	v := r.lock.vote
	if v == nil {
		return ErrAlreadyResolved
	}
	if v.Closed {
		log.Printf("Room.castVote: room=%s stale vote from player=%d", r.ID, voterID)
		return ErrAlreadyResolved
	}
	if voterID != v.CurrentVoter() {
		// голос вне очереди не мутирует бюллетени
		return ErrNotYourTurn
	}
	if v.HasVoted(voterID) {
		return ErrAlreadyResolved
	}
	if !r.seated(accusedID) {
		return ErrUnknownPlayer
	}

	v.Ballots = append(v.Ballots, domain.Ballot{VoterID: voterID, AccusedID: accusedID})
	v.CurrentVoterIndex++

	if len(v.Ballots) < len(v.EligibleVoters) {
		r.emit(evtCurrentVoter(v.CurrentVoter()))
		return nil
	}

	// все проголосовали - закрываем и считаем
	v.Closed = true
	votesCompleted.Inc()
	accused := tally(v.Ballots)
	v.AccusedID = &accused
	log.Printf("Room.castVote: room=%s round=%s closed, accused=%d (%d ballots)", r.ID, v.ID, accused, len(v.Ballots))

	r.emit(evtRegisterVotes(true), evtPlayerSuspicious(accused))

	// если скрытых секретов не осталось, выбор раскрывать нечего
	if len(r.vault.HiddenByPlayer(accused)) == 0 {
		v.RevealResolved = true
		log.Printf("Room.castVote: room=%s accused=%d has no hidden secrets", r.ID, accused)
	}
	return nil
}

// tally возвращает обвинённого с наибольшим числом голосов; ничья разрешается
// в пользу самого раннего поданного бюллетеня
func tally(ballots []domain.Ballot) int64 {
	counts := make(map[int64]int, len(ballots))
	max := 0
	for _, b := range ballots {
		counts[b.AccusedID]++
		if counts[b.AccusedID] > max {
			max = counts[b.AccusedID]
		}
	}
	for _, b := range ballots {
		if counts[b.AccusedID] == max {
			return b.AccusedID
		}
	}
	return 0
}

// revealChoice - обвинённый раскрывает один из своих скрытых секретов
func (r *Room) revealChoice(playerID, secretID int64) error {
	v := r.lock.vote
	if v == nil || !v.Closed || v.AccusedID == nil {
		return ErrAlreadyResolved
	}
	if v.RevealResolved {
		return ErrAlreadyResolved
	}
	if playerID != *v.AccusedID {
		return ErrNotYourTurn
	}

	s, ok := r.vault.Get(secretID)
	if !ok || s.OwnerID != playerID {
		return ErrUnknownCard
	}
	if s.IsRevealed {
		return ErrAlreadyResolved
	}

	rec, changed, err := r.vault.Reveal(secretID, true)
	if err != nil {
		return err
	}
	v.RevealResolved = true
	if changed {
		r.persistSecret(rec)
		r.emit(evtSecretUpdate(rec))
	}
	return nil
}

// finishVote - только инициатор, после закрытия раунда и разрешения выбора,
// расходует запустившую карту события; раунд уничтожается, затвор отпускается
func (r *Room) finishVote(initiatorID int64) error {
	v := r.lock.vote
	if v == nil {
		return ErrAlreadyResolved
	}
	if initiatorID != v.InitiatorID {
		return ErrNotYourTurn
	}
	if !v.Closed || !v.RevealResolved {
		return ErrRoomBusy
	}

	if err := r.discard(initiatorID, v.CardID); err != nil {
		log.Printf("Room.finishVote: room=%s discard card=%d: %v", r.ID, v.CardID, err)
	}
	r.releaseLock()
	log.Printf("Room.finishVote: room=%s round=%s consumed", r.ID, v.ID)
	return nil
}
