package domain

// Ballot - один голос; порядок подачи важен для разрешения ничьих
type Ballot struct {
	VoterID   int64 `json:"voter_id"`
	AccusedID int64 `json:"accused_id"`
}

// VoteRound - один круг голосования "укажи подозреваемого".
// Создаётся StartVote, уничтожается когда closed и карта события израсходована.
type VoteRound struct {
	ID                string   `json:"id"`
	InitiatorID       int64    `json:"initiator_id"`
	CardID            int64    `json:"card_id"` // карта события, запустившая голосование
	EligibleVoters    []int64  `json:"eligible_voters"`
	CurrentVoterIndex int      `json:"current_voter_index"`
	Ballots           []Ballot `json:"ballots"`
	Closed            bool     `json:"closed"`

	// заполняется после подсчёта
	AccusedID *int64 `json:"accused_id,omitempty"`
	// true когда обвинённый разрешил выбор секрета (или секретов не осталось)
	RevealResolved bool `json:"reveal_resolved"`
}

// CurrentVoter возвращает игрока, чья очередь голосовать (0 если раунд закрыт)
func (v *VoteRound) CurrentVoter() int64 {
	if v.Closed || v.CurrentVoterIndex >= len(v.EligibleVoters) {
		return 0
	}
	return v.EligibleVoters[v.CurrentVoterIndex]
}

// HasVoted сообщает, подал ли игрок уже голос
func (v *VoteRound) HasVoted(playerID int64) bool {
	for _, b := range v.Ballots {
		if b.VoterID == playerID {
			return true
		}
	}
	return false
}
