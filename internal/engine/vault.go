package engine

import (
	"log"

	"dotc_server/internal/domain"
)

// Vault владеет состоянием reveal/hide секретных карт комнаты.
// Мутации происходят только внутри сериализованного потока комнаты,
// поэтому отдельная блокировка не нужна - очередь и есть блокировка.
type Vault struct {
	secrets map[int64]*domain.SecretCard
}

func NewVault(cards []domain.SecretCard) *Vault {
	v := &Vault{secrets: make(map[int64]*domain.SecretCard, len(cards))}
	for i := range cards {
		c := cards[i]
		v.secrets[c.ID] = &c
	}
	return v
}

func (v *Vault) Get(cardID int64) (domain.SecretCard, bool) {
	s, ok := v.secrets[cardID]
	if !ok {
		return domain.SecretCard{}, false
	}
	return *s, true
}

// Reveal устанавливает is_revealed. Идемпотентна: если значение уже такое,
// это no-op, который всё равно возвращает текущую запись; changed=true только
// когда значение действительно перевернулось.
func (v *Vault) Reveal(cardID int64, desired bool) (domain.SecretCard, bool, error) {
	s, ok := v.secrets[cardID]
	if !ok {
		return domain.SecretCard{}, false, ErrUnknownCard
	}
	if s.IsRevealed == desired {
		return *s, false, nil
	}
	s.IsRevealed = desired
	log.Printf("Vault.Reveal: secret=%d owner=%d revealed=%v", s.ID, s.OwnerID, desired)
	return *s, true, nil
}

// TransferOwnership атомарно переносит секрет между игроками. is_revealed не
// меняется; эффект, которому нужно иное (hide), делает это тем же проходом
// через очередь комнаты.
func (v *Vault) TransferOwnership(cardID, fromID, toID int64) (domain.SecretCard, error) {
	s, ok := v.secrets[cardID]
	if !ok {
		return domain.SecretCard{}, ErrUnknownCard
	}
	if s.OwnerID != fromID {
		return domain.SecretCard{}, ErrUnknownPlayer
	}
	s.OwnerID = toID
	log.Printf("Vault.TransferOwnership: secret=%d %d -> %d (revealed=%v)", cardID, fromID, toID, s.IsRevealed)
	return *s, nil
}

// HiddenByPlayer возвращает ещё не раскрытые секреты игрока
func (v *Vault) HiddenByPlayer(ownerID int64) []domain.SecretCard {
	var out []domain.SecretCard
	for _, s := range v.secrets {
		if s.OwnerID == ownerID && !s.IsRevealed {
			out = append(out, *s)
		}
	}
	return out
}
