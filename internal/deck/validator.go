package deck

import (
	"fmt"

	"github.com/google/uuid"

	"dotc_server/internal/domain"
)

// ValidationError - некорректная комбинация карт; сообщается только отправителю,
// состояние комнаты не меняется
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid set: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AddResult - результат проверки добавления карты к существующему сету
type AddResult struct {
	Set *domain.DetectiveSet
	// true если смешение Томми и Таппенс гасит возможность отмены (навсегда)
	FlipToNonCancellable bool
}

// ValidateNewSet решает, образует ли группа карт легальный детективный сет,
// и вычисляет его эффект. Чистая функция: порядок карт на результат не влияет.
func ValidateNewSet(cards []domain.Card) (*domain.DetectiveSet, error) {
	if len(cards) == 0 {
		return nil, invalid("no cards selected")
	}

	var (
		quinCount    int
		oliverCount  int
		nonWildcards []string
	)
	for _, c := range cards {
		switch name := DetectiveName(c.Name); name {
		case HarleyQuinWildcard:
			quinCount++
		case AriadneOliver:
			oliverCount++
		default:
			nonWildcards = append(nonWildcards, name)
		}
	}

	if oliverCount > 0 {
		return nil, invalid("ARIADNE_OLIVER cannot seed a new set")
	}
	if len(nonWildcards) == 0 {
		return nil, invalid("set must contain at least one principal detective")
	}
	if quinCount > 1 {
		return nil, invalid("only one HARLEY_QUIN wildcard may join a set")
	}

	principal := nonWildcards[0]

	// специальный случай: ровно пара Томми + Таппенс, без джокера
	hasTommy, hasTuppence := false, false
	for _, n := range nonWildcards {
		if n == TommyBeresford {
			hasTommy = true
		}
		if n == TuppenceBeresfrd {
			hasTuppence = true
		}
	}
	isPairSet := len(nonWildcards) == 2 && quinCount == 0 && hasTommy && hasTuppence

	if !isPairSet {
		for _, n := range nonWildcards {
			if n != principal {
				return nil, invalid("all cards must belong to the same principal detective")
			}
		}
	}

	base := principal
	if isPairSet {
		base = TommyBeresford
	}
	required := RequiredAmount(base)
	if required == 0 {
		return nil, invalid("detective %s does not form a standard set", base)
	}
	if len(cards) != required {
		return nil, invalid("detective %s requires %d cards, got %d", base, required, len(cards))
	}

	effect := baseSetEffects[base]
	set := &domain.DetectiveSet{
		ID:            uuid.NewString(),
		MainDetective: principal,
		CardIDs:       cardIDs(cards),
		ActionSecret:  effect.ActionSecret,
		IsCancellable: effect.IsCancellable,
	}

	if isPairSet {
		set.MainDetective = domain.MainDetectivePair
		// пара Бересфордов никогда не может быть отменена,
		// независимо от их индивидуальных флагов
		set.IsCancellable = false
	}

	if quinCount == 1 && principal == MrSatterthwaite {
		tag := "Satterthwaite"
		set.WildcardEffect = &tag
	}

	return set, nil
}

// ValidateAddition проверяет добавление одной карты к существующему сету.
// Джокер Quin этим путём добавить нельзя.
func ValidateAddition(card domain.Card, target *domain.DetectiveSet) (*AddResult, error) {
	if target == nil {
		return nil, invalid("target set is required")
	}

	name := DetectiveName(card.Name)
	if name == HarleyQuinWildcard {
		return nil, invalid("HARLEY_QUIN cannot be added to an existing set")
	}
	if name == AriadneOliver {
		return nil, invalid("use the aggregator path to add ARIADNE_OLIVER")
	}

	if target.MainDetective == domain.MainDetectivePair || IsBeresford(target.MainDetective) {
		if !IsBeresford(name) {
			return nil, invalid("this set only accepts TOMMY or TUPPENCE")
		}
		// добавление второго (другого) Бересфорда гасит флаг навсегда;
		// ещё один такой же Бересфорд флаг не трогает
		flip := target.IsCancellable && name != target.MainDetective
		if target.MainDetective == domain.MainDetectivePair {
			flip = false // уже погашен при создании пары
		}
		return &AddResult{Set: target, FlipToNonCancellable: flip}, nil
	}

	if name != target.MainDetective {
		return nil, invalid("cannot add %s to a %s set", name, target.MainDetective)
	}
	return &AddResult{Set: target}, nil
}

// ValidateAggregatorAddition проверяет добавление Ariadne Oliver: только к
// существующему сету, эффект сета сохраняется, её собственный вклад - reveal_their.
func ValidateAggregatorAddition(card domain.Card, target *domain.DetectiveSet) (*domain.DetectiveSet, error) {
	if DetectiveName(card.Name) != AriadneOliver {
		return nil, invalid("card is not ARIADNE_OLIVER")
	}
	if target == nil {
		return nil, invalid("ARIADNE_OLIVER can only join an existing set on the table")
	}

	updated := *target
	updated.CardIDs = append(append([]int64(nil), target.CardIDs...), card.ID)
	updated.ActionSecret = domain.ActionRevealTheir
	// возможность отмены и тег джокера наследуются от целевого сета
	return &updated, nil
}

func cardIDs(cards []domain.Card) []int64 {
	ids := make([]int64, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}
