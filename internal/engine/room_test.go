package engine

import (
	"errors"
	"testing"
	"time"

	"dotc_server/internal/deck"
	"dotc_server/internal/domain"
)

// newRunningRoom поднимает комнату с работающим циклом и коротким отсчётом
func newRunningRoom(t *testing.T, countdown time.Duration) (*Room, *recorder) {
	t.Helper()
	rec := &recorder{}
	setup := TableSetup{
		Seats: []int64{1, 2, 3},
		Hands: map[int64][]domain.Card{
			1: {
				{ID: 11, Name: "detective_poirot", Kind: domain.KindDetective},
				{ID: 12, Name: "detective_poirot", Kind: domain.KindDetective},
				{ID: 13, Name: "detective_poirot", Kind: domain.KindDetective},
				{ID: 16, Name: "detective_tommyberesford", Kind: domain.KindDetective},
				{ID: 17, Name: "detective_tuppenceberesford", Kind: domain.KindDetective},
			},
			2: {
				{ID: 21, Name: deck.CardNotSoFast, Kind: domain.KindInstant},
			},
			3: nil,
		},
		Secrets: []domain.SecretCard{
			{ID: 102, Name: "secret_back", OwnerID: 2},
		},
	}
	r := NewRoom("room-e2e", setup, rec, nil, countdown)
	r.tickEvery = 0 // тики в e2e не нужны
	go r.Run()
	t.Cleanup(r.Close)
	return r, rec
}

// Сценарий спецификации: A играет валидный сет из 3 карт, B контрит,
// окно разрешается Cancelled, эффект не применяется, карты остаются у A
func TestRoom_EndToEnd_CounterCancelsSetEffect(t *testing.T) {
	r, rec := newRunningRoom(t, time.Hour) // дедлайн не должен успеть

	target := int64(102)
	targetOwner := int64(2)
	set, err := r.PlayDetectiveSet(1, []int64{11, 12, 13}, &target, &targetOwner)
	if err != nil {
		t.Fatalf("PlayDetectiveSet: %v", err)
	}
	if !set.IsCancellable {
		t.Fatal("сет из 3 Пуаро обязан быть отменяемым")
	}

	if err := r.SubmitCounter(2, 21); err != nil {
		t.Fatalf("SubmitCounter: %v", err)
	}
	rec.waitFor(t, "EVENT_CANCELLED", time.Second)
	rec.waitFor(t, "COUNTDOWN_END", time.Second)

	// эффект не диспатчился, секрет игрока 2 не тронут
	if err := r.exec(func() error {
		s, _ := r.vault.Get(102)
		if s.IsRevealed {
			t.Error("секрет не должен быть раскрыт после отмены")
		}
		// сет и его карты остаются собственностью A
		for _, st := range r.sets {
			if st.OwnerID != 1 {
				t.Errorf("сет сменил владельца: %+v", st)
			}
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

// Дедлайн, инжектированный в очередь, разрешает окно Active
func TestRoom_EndToEnd_DeadlineDispatchesEffect(t *testing.T) {
	r, rec := newRunningRoom(t, 30*time.Millisecond)

	target := int64(102)
	targetOwner := int64(2)
	if _, err := r.PlayDetectiveSet(1, []int64{11, 12, 13}, &target, &targetOwner); err != nil {
		t.Fatalf("PlayDetectiveSet: %v", err)
	}

	rec.waitFor(t, "COUNTDOWN_END", time.Second)
	rec.waitFor(t, "secretUpdate", time.Second)

	if err := r.exec(func() error {
		s, _ := r.vault.Get(102)
		if !s.IsRevealed {
			t.Error("эффект reveal обязан примениться после дедлайна")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if r.Busy() {
		t.Fatal("затвор обязан отпуститься")
	}
}

// Пара Бересфордов играется без окна: эффект немедленный, неотменяемый
func TestRoom_BeresfordPairSkipsWindow(t *testing.T) {
	r, rec := newRunningRoom(t, time.Hour)

	target := int64(102)
	targetOwner := int64(2)
	set, err := r.PlayDetectiveSet(1, []int64{16, 17}, &target, &targetOwner)
	if err != nil {
		t.Fatalf("пара Бересфордов: %v", err)
	}
	if set.IsCancellable {
		t.Fatal("пара всегда неотменяема")
	}
	if r.Busy() {
		t.Fatal("неотменяемый сет не открывает окно")
	}
	rec.waitFor(t, "secretUpdate", time.Second)
}

// Добавление через очередь: гашение is_cancellable необратимо
func TestRoom_AddToSetFlipIsPermanent(t *testing.T) {
	rec := &recorder{}
	setup := TableSetup{
		Seats: []int64{1, 2},
		Hands: map[int64][]domain.Card{
			1: {
				{ID: 41, Name: "detective_tommyberesford", Kind: domain.KindDetective},
				{ID: 42, Name: "detective_tommyberesford", Kind: domain.KindDetective},
				{ID: 43, Name: "detective_tuppenceberesford", Kind: domain.KindDetective},
				{ID: 44, Name: "detective_tommyberesford", Kind: domain.KindDetective},
			},
		},
	}
	r := NewRoom("room-flip", setup, rec, nil, time.Hour)
	r.tickEvery = 0
	go r.Run()
	defer r.Close()

	set, err := r.PlayDetectiveSet(1, []int64{41, 42}, nil, nil)
	if err != nil {
		t.Fatalf("сет Томми: %v", err)
	}
	if !set.IsCancellable {
		t.Fatal("чистый сет Томми отменяем")
	}
	// закрываем висящее окно эффектa: контрить некому, ждать нечего -
	// гасим дедлайном через очередь
	if err := r.exec(func() error { return r.handleDeadline(r.lock.pending.ID) }); err != nil {
		t.Fatalf("deadline: %v", err)
	}

	updated, err := r.AddToSet(1, 43, set.ID)
	if err != nil {
		t.Fatalf("добавление Таппенс: %v", err)
	}
	if updated.IsCancellable {
		t.Fatal("смешение Бересфордов гасит флаг")
	}

	// дальнейшие добавления флаг не возвращают
	updated, err = r.AddToSet(1, 44, set.ID)
	if err != nil {
		t.Fatalf("добавление Томми: %v", err)
	}
	if updated.IsCancellable {
		t.Fatal("is_cancellable не возвращается в true никогда")
	}
}

// Дубликат card_id в интенте не превращает 2 карты в "сет из 3"
func TestRoom_DuplicateCardIDsRejected(t *testing.T) {
	rec := &recorder{}
	setup := TableSetup{
		Seats: []int64{1, 2},
		Hands: map[int64][]domain.Card{
			1: {
				{ID: 51, Name: "detective_poirot", Kind: domain.KindDetective},
				{ID: 52, Name: "detective_poirot", Kind: domain.KindDetective},
			},
		},
	}
	r := NewRoom("room-dup", setup, rec, nil, time.Hour)
	r.tickEvery = 0
	go r.Run()
	defer r.Close()

	_, err := r.PlayDetectiveSet(1, []int64{51, 51, 52}, nil, nil)
	var ve *deck.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("ожидалась ValidationError, получено %v", err)
	}

	if err := r.exec(func() error {
		if len(r.hands[1]) != 2 {
			t.Errorf("рука не должна меняться, осталось %d карт", len(r.hands[1]))
		}
		if len(r.sets) != 0 {
			t.Error("стол должен остаться пустым")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if r.Busy() {
		t.Fatal("затвор не должен захватываться при ошибке валидации")
	}
}

// Пока по сету открыто окно отмены, его состав заморожен
func TestRoom_AddToSetBlockedWhileWindowOpen(t *testing.T) {
	rec := &recorder{}
	setup := TableSetup{
		Seats: []int64{1, 2},
		Hands: map[int64][]domain.Card{
			1: {
				{ID: 61, Name: "detective_tommyberesford", Kind: domain.KindDetective},
				{ID: 62, Name: "detective_tommyberesford", Kind: domain.KindDetective},
				{ID: 63, Name: "detective_tuppenceberesford", Kind: domain.KindDetective},
			},
		},
	}
	r := NewRoom("room-frozen", setup, rec, nil, time.Hour)
	r.tickEvery = 0
	go r.Run()
	defer r.Close()

	set, err := r.PlayDetectiveSet(1, []int64{61, 62}, nil, nil)
	if err != nil {
		t.Fatalf("сет Томми: %v", err)
	}
	if !set.IsCancellable {
		t.Fatal("чистый сет Томми отменяем")
	}

	// добавление Таппенс посреди отсчёта гасило бы флаг отменяемого окна
	if _, err := r.AddToSet(1, 63, set.ID); err != ErrRoomBusy {
		t.Fatalf("добавление в сет под окном: ожидался ErrRoomBusy, получено %v", err)
	}
	if err := r.exec(func() error {
		if !r.sets[set.ID].IsCancellable {
			t.Error("флаг не должен гаснуть, пока окно открыто")
		}
		if len(r.sets[set.ID].CardIDs) != 2 {
			t.Error("состав сета не должен меняться")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	// после разрешения окна добавление снова разрешено
	if err := r.exec(func() error { return r.handleDeadline(r.lock.pending.ID) }); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	updated, err := r.AddToSet(1, 63, set.ID)
	if err != nil {
		t.Fatalf("добавление после дедлайна: %v", err)
	}
	if updated.IsCancellable {
		t.Fatal("смешение Бересфордов гасит флаг")
	}
}

// Невалидный сет - ValidationError, состояние комнаты не меняется
func TestRoom_InvalidSetLeavesHandIntact(t *testing.T) {
	r, _ := newRunningRoom(t, time.Hour)

	if _, err := r.PlayDetectiveSet(1, []int64{11, 12}, nil, nil); err == nil {
		t.Fatal("2 Пуаро из 3 обязаны отклоняться")
	}
	if err := r.exec(func() error {
		if len(r.hands[1]) != 5 {
			t.Errorf("рука не должна меняться, осталось %d карт", len(r.hands[1]))
		}
		if len(r.sets) != 0 {
			t.Error("стол должен остаться пустым")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if r.Busy() {
		t.Fatal("затвор не должен захватываться при ошибке валидации")
	}
}
