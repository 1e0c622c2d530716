package deck

import (
	"errors"
	"math/rand"
	"testing"

	"dotc_server/internal/domain"
)

var nextCardID int64

// создает детективную карту для тестов
func detCard(t *testing.T, name string) domain.Card {
	t.Helper()
	nextCardID++
	kind := domain.KindDetective
	if name == "detective_quin" || name == "detective_oliver" {
		kind = domain.KindWildcard
	}
	return domain.Card{ID: nextCardID, Name: name, Kind: kind}
}

func cardsOf(t *testing.T, names ...string) []domain.Card {
	t.Helper()
	out := make([]domain.Card, 0, len(names))
	for _, n := range names {
		out = append(out, detCard(t, n))
	}
	return out
}

func TestValidateNewSet_RequiredAmounts(t *testing.T) {
	cases := []struct {
		card     string
		required int
	}{
		{"detective_poirot", 3},
		{"detective_marple", 3},
		{"detective_tommyberesford", 2},
		{"detective_tuppenceberesford", 2},
		{"detective_brent", 2},
		{"detective_satterthwaite", 2},
		{"detective_pyne", 2},
	}

	for _, tc := range cases {
		// ровно нужное количество - валидно
		names := make([]string, tc.required)
		for i := range names {
			names[i] = tc.card
		}
		set, err := ValidateNewSet(cardsOf(t, names...))
		if err != nil {
			t.Fatalf("%s x%d: ожидался валидный сет, получено %v", tc.card, tc.required, err)
		}
		if len(set.CardIDs) != tc.required {
			t.Fatalf("%s: ожидалось %d карт в сете, получено %d", tc.card, tc.required, len(set.CardIDs))
		}

		// на одну меньше - невалидно
		if _, err := ValidateNewSet(cardsOf(t, names[:tc.required-1]...)); err == nil {
			t.Fatalf("%s x%d: ожидалась ошибка (недобор)", tc.card, tc.required-1)
		}

		// на одну больше - невалидно
		if _, err := ValidateNewSet(cardsOf(t, append(names, tc.card)...)); err == nil {
			t.Fatalf("%s x%d: ожидалась ошибка (перебор)", tc.card, tc.required+1)
		}
	}
}

func TestValidateNewSet_OrderIndependent(t *testing.T) {
	names := []string{"detective_satterthwaite", "detective_quin"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		cards := cardsOf(t, names...)
		rng.Shuffle(len(cards), func(a, b int) { cards[a], cards[b] = cards[b], cards[a] })

		set, err := ValidateNewSet(cards)
		if err != nil {
			t.Fatalf("перестановка %d: %v", i, err)
		}
		if set.MainDetective != MrSatterthwaite {
			t.Fatalf("перестановка %d: main=%s", i, set.MainDetective)
		}
		if set.WildcardEffect == nil || *set.WildcardEffect != "Satterthwaite" {
			t.Fatalf("перестановка %d: ожидался wildcard эффект Satterthwaite", i)
		}
	}
}

func TestValidateNewSet_EmptyAndWildcardOnly(t *testing.T) {
	if _, err := ValidateNewSet(nil); err == nil {
		t.Fatal("ожидалась ошибка для пустого входа")
	}
	if _, err := ValidateNewSet(cardsOf(t, "detective_quin")); err == nil {
		t.Fatal("ожидалась ошибка для сета из одного джокера")
	}

	var verr *ValidationError
	_, err := ValidateNewSet(cardsOf(t, "detective_oliver", "detective_poirot", "detective_poirot"))
	if !errors.As(err, &verr) {
		t.Fatalf("ожидалась ValidationError для сета с Оливер, получено %v", err)
	}
}

func TestValidateNewSet_BeresfordPairNeverCancellable(t *testing.T) {
	set, err := ValidateNewSet(cardsOf(t, "detective_tommyberesford", "detective_tuppenceberesford"))
	if err != nil {
		t.Fatalf("пара Бересфордов должна быть валидной: %v", err)
	}
	if set.MainDetective != domain.MainDetectivePair {
		t.Fatalf("ожидался маркер %q, получено %q", domain.MainDetectivePair, set.MainDetective)
	}
	if set.IsCancellable {
		t.Fatal("пара Бересфордов всегда неотменяема")
	}

	// обратный порядок - тот же результат
	set2, err := ValidateNewSet(cardsOf(t, "detective_tuppenceberesford", "detective_tommyberesford"))
	if err != nil || set2.IsCancellable {
		t.Fatalf("обратный порядок: err=%v cancellable=%v", err, set2.IsCancellable)
	}
}

func TestValidateNewSet_MixedPrincipalsRejected(t *testing.T) {
	if _, err := ValidateNewSet(cardsOf(t, "detective_poirot", "detective_marple", "detective_poirot")); err == nil {
		t.Fatal("смешанные детективы должны быть отклонены")
	}
}

func TestValidateNewSet_QuinJoinsPrincipal(t *testing.T) {
	// Quin замещает одну карту Пуаро: 2 Пуаро + Quin = 3
	set, err := ValidateNewSet(cardsOf(t, "detective_poirot", "detective_poirot", "detective_quin"))
	if err != nil {
		t.Fatalf("Quin с Пуаро: %v", err)
	}
	if set.WildcardEffect != nil {
		t.Fatal("wildcard эффект положен только Саттертуэйту")
	}
	if set.ActionSecret != domain.ActionRevealYour {
		t.Fatalf("эффект Пуаро reveal_your, получено %s", set.ActionSecret)
	}
}

func TestValidateAddition_FlipIsPermanent(t *testing.T) {
	tommy := detCard(t, "detective_tommyberesford")
	set := &domain.DetectiveSet{
		ID:            "s1",
		MainDetective: TommyBeresford,
		CardIDs:       []int64{tommy.ID},
		ActionSecret:  domain.ActionRevealTheir,
		IsCancellable: true,
	}

	// второй такой же Томми: флаг не трогаем
	res, err := ValidateAddition(detCard(t, "detective_tommyberesford"), set)
	if err != nil {
		t.Fatalf("добавление Томми: %v", err)
	}
	if res.FlipToNonCancellable {
		t.Fatal("одинаковый Бересфорд не должен гасить флаг")
	}

	// Таппенс в сет Томми: флаг гаснет
	res, err = ValidateAddition(detCard(t, "detective_tuppenceberesford"), set)
	if err != nil {
		t.Fatalf("добавление Таппенс: %v", err)
	}
	if !res.FlipToNonCancellable {
		t.Fatal("смешение Томми и Таппенс обязано гасить флаг")
	}
	set.IsCancellable = false

	// после гашения ни одно добавление не возвращает флаг обратно
	for _, name := range []string{"detective_tommyberesford", "detective_tuppenceberesford"} {
		res, err := ValidateAddition(detCard(t, name), set)
		if err != nil {
			t.Fatalf("добавление %s после гашения: %v", name, err)
		}
		if res.FlipToNonCancellable {
			t.Fatalf("%s: флаг уже погашен, повторного гашения быть не должно", name)
		}
		if res.Set.IsCancellable {
			t.Fatal("is_cancellable никогда не возвращается в true")
		}
	}
}

func TestValidateAddition_Rules(t *testing.T) {
	poirotSet := &domain.DetectiveSet{
		ID:            "s2",
		MainDetective: HerculePoirot,
		CardIDs:       []int64{101, 102, 103},
		ActionSecret:  domain.ActionRevealYour,
		IsCancellable: true,
	}

	if _, err := ValidateAddition(detCard(t, "detective_quin"), poirotSet); err == nil {
		t.Fatal("Quin нельзя добавить к существующему сету")
	}
	if _, err := ValidateAddition(detCard(t, "detective_marple"), poirotSet); err == nil {
		t.Fatal("чужой детектив не добавляется к сету Пуаро")
	}
	if _, err := ValidateAddition(detCard(t, "detective_poirot"), poirotSet); err != nil {
		t.Fatal("свой детектив должен добавляться")
	}

	beresfordSet := &domain.DetectiveSet{
		ID:            "s3",
		MainDetective: TuppenceBeresfrd,
		CardIDs:       []int64{104, 105},
		ActionSecret:  domain.ActionRevealTheir,
		IsCancellable: true,
	}
	if _, err := ValidateAddition(detCard(t, "detective_poirot"), beresfordSet); err == nil {
		t.Fatal("сет Бересфордов принимает только Томми или Таппенс")
	}
}

func TestValidateAggregatorAddition(t *testing.T) {
	oliver := detCard(t, "detective_oliver")

	// без целевого сета - ошибка
	if _, err := ValidateAggregatorAddition(oliver, nil); err == nil {
		t.Fatal("Оливер не может основать сет")
	}

	tag := "Satterthwaite"
	target := &domain.DetectiveSet{
		ID:             "s4",
		MainDetective:  MrSatterthwaite,
		CardIDs:        []int64{110, 111},
		ActionSecret:   domain.ActionHide,
		IsCancellable:  true,
		WildcardEffect: &tag,
	}

	updated, err := ValidateAggregatorAddition(oliver, target)
	if err != nil {
		t.Fatalf("добавление Оливер: %v", err)
	}
	if updated.ActionSecret != domain.ActionRevealTheir {
		t.Fatalf("вклад Оливер - reveal_their, получено %s", updated.ActionSecret)
	}
	if updated.WildcardEffect == nil || *updated.WildcardEffect != tag {
		t.Fatal("тег джокера целевого сета должен сохраниться")
	}
	if !updated.Contains(oliver.ID) {
		t.Fatal("карта Оливер должна войти в сет")
	}
	// исходный сет не мутирует
	if target.Contains(oliver.ID) || target.ActionSecret != domain.ActionHide {
		t.Fatal("исходный сет не должен меняться")
	}

	// не-Оливер этим путём не добавляется
	if _, err := ValidateAggregatorAddition(detCard(t, "detective_poirot"), target); err == nil {
		t.Fatal("только Оливер проходит через путь агрегатора")
	}
}
