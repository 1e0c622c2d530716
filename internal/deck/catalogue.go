package deck

import (
	"strings"

	"dotc_server/internal/domain"
)

// Личности главных детективов
const (
	HerculePoirot    = "HERCULE_POIROT"
	MissMarple       = "MISS_MARPLE"
	TommyBeresford   = "TOMMY_BERESFORD"
	TuppenceBeresfrd = "TUPPENCE_BERESFORD"
	LadyEileen       = "LADY_EILEEN"
	MrSatterthwaite  = "MR_SATTERTHWAITE"
	ParkerPyne       = "PARKER_PYNE"
	// джокер: прикрепляется к любому главному детективу
	HarleyQuinWildcard = "HARLEY_QUIN_WILDCARD"
	// агрегатор: добавляется только к существующему сету
	AriadneOliver = "ARIADNE_OLIVER"
)

// PairSetName - имя специального сета из двух разных Бересфордов
const PairSetName = "TOMMY & TUPPENCE"

// Имена карт в хранилище
const (
	CardNotSoFast          = "Instant_notsofast"
	CardPointYourSuspicion = "Event_pointyoursuspicions"
)

// отображение имени карты из хранилища в личность детектива
var cardNameToDetective = map[string]string{
	"detective_poirot":           HerculePoirot,
	"detective_marple":           MissMarple,
	"detective_tommyberesford":   TommyBeresford,
	"detective_tuppenceberesford": TuppenceBeresfrd,
	"detective_brent":            LadyEileen,
	"detective_satterthwaite":    MrSatterthwaite,
	"detective_pyne":             ParkerPyne,
	"detective_quin":             HarleyQuinWildcard,
	"detective_oliver":           AriadneOliver,
}

type setEffect struct {
	ActionSecret  domain.ActionSecret
	IsCancellable bool
}

// базовые эффекты сета каждого детектива
var baseSetEffects = map[string]setEffect{
	HerculePoirot:    {domain.ActionRevealYour, true},
	MissMarple:       {domain.ActionRevealYour, true},
	TommyBeresford:   {domain.ActionRevealTheir, true},
	TuppenceBeresfrd: {domain.ActionRevealTheir, true},
	LadyEileen:       {domain.ActionRevealTheir, true},
	MrSatterthwaite:  {domain.ActionRevealTheir, true},
	ParkerPyne:       {domain.ActionHide, true},
}

// сколько карт требует сет каждого детектива
var requiredAmounts = map[string]int{
	HerculePoirot:    3,
	MissMarple:       3,
	TommyBeresford:   2,
	TuppenceBeresfrd: 2,
	LadyEileen:       2,
	MrSatterthwaite:  2,
	ParkerPyne:       2,
}

// DetectiveName переводит имя карты в личность детектива
func DetectiveName(cardName string) string {
	if d, ok := cardNameToDetective[strings.ToLower(cardName)]; ok {
		return d
	}
	return strings.ToUpper(cardName)
}

// RequiredAmount возвращает размер сета детектива (0 если сет не существует)
func RequiredAmount(detective string) int {
	return requiredAmounts[detective]
}

// IsBeresford сообщает, принадлежит ли личность паре Томми/Таппенс
func IsBeresford(detective string) bool {
	return detective == TommyBeresford || detective == TuppenceBeresfrd
}
