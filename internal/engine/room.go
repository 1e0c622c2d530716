package engine

import (
	"context"
	"log"
	"time"

	"dotc_server/internal/deck"
	"dotc_server/internal/domain"
)

// Store - внешний репозиторий для фиксации мутаций (владение картами,
// состояние секретов). Запись асинхронная и не держит цикл комнаты.
type Store interface {
	SaveCardOwner(ctx context.Context, cardID int64, ownerID *int64) error
	SaveSecretRevealed(ctx context.Context, cardID int64, revealed bool) error
	RecordTransfer(ctx context.Context, t domain.OwnershipTransfer) error
}

// roomLock - затвор взаимного исключения комнаты: пока открыто PendingAction
// или VoteRound, другие отменяемые действия отклоняются (не ждут)
type roomLock struct {
	pending *domain.PendingAction
	vote    *domain.VoteRound
}

func (l *roomLock) busy() bool {
	return l.pending != nil || l.vote != nil
}

type task struct {
	fn    func() error
	reply chan error
}

// Room - авторитетный координатор одной комнаты. Все интенты игроков
// обрабатываются последовательно одной горутиной (Run); дедлайны и тики
// инжектируются в ту же очередь, так что cancel-vs-deadline решается
// порядком очереди, а не временем на часах.
type Room struct {
	ID string

	intents chan task
	done    chan struct{}

	// состояние стола: места в порядке ходов, руки, сеты на столе
	seats []int64
	hands map[int64][]domain.Card
	sets  map[string]*domain.DetectiveSet
	vault *Vault

	lock roomLock

	countdown time.Duration
	tickEvery time.Duration

	bc    Broadcaster
	store Store

	now func() time.Time
}

type TableSetup struct {
	// игроки в порядке ходов (из внешнего трекера очередности)
	Seats   []int64
	Hands   map[int64][]domain.Card
	Secrets []domain.SecretCard
}

func NewRoom(id string, setup TableSetup, bc Broadcaster, store Store, countdown time.Duration) *Room {
	if countdown <= 0 {
		countdown = 10 * time.Second
	}
	hands := setup.Hands
	if hands == nil {
		hands = make(map[int64][]domain.Card)
	}
	return &Room{
		ID:        id,
		intents:   make(chan task, 64),
		done:      make(chan struct{}),
		seats:     append([]int64(nil), setup.Seats...),
		hands:     hands,
		sets:      make(map[string]*domain.DetectiveSet),
		vault:     NewVault(setup.Secrets),
		countdown: countdown,
		tickEvery: time.Second,
		bc:        bc,
		store:     store,
		now:       time.Now,
	}
}

// Run обрабатывает очередь интентов до Close. Ошибка отдельного интента
// никогда не останавливает цикл.
func (r *Room) Run() {
	log.Printf("Room.Run: starting room=%s seats=%v", r.ID, r.seats)
	for {
		select {
		case t := <-r.intents:
			err := t.fn()
			if err != nil {
				intentsRejected.WithLabelValues(err.Error()).Inc()
			}
			if t.reply != nil {
				t.reply <- err
			}
		case <-r.done:
			log.Printf("Room.Run: room=%s closed", r.ID)
			return
		}
	}
}

func (r *Room) Close() {
	close(r.done)
}

// exec ставит интент в очередь и ждёт результата обработки
func (r *Room) exec(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case r.intents <- task{fn: fn, reply: reply}:
	case <-r.done:
		return ErrAlreadyResolved
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrAlreadyResolved
	}
}

// post ставит событие таймера в очередь, не дожидаясь обработки
func (r *Room) post(fn func() error) {
	select {
	case r.intents <- task{fn: fn}:
	case <-r.done:
	}
}

// schedule инжектирует fn в сериализованный поток комнаты спустя d.
// Вызывающий возвращается сразу - никакого блокирующего sleep.
func (r *Room) schedule(d time.Duration, fn func() error) {
	time.AfterFunc(d, func() { r.post(fn) })
}

func (r *Room) emit(events ...Event) {
	if r.bc == nil {
		return
	}
	for _, e := range events {
		r.bc.Broadcast(r.ID, e)
	}
}

// --- публичный API: каждый интент проходит через очередь ---

// SubmitEventCard объявляет отменяемую карту события и открывает окно прерывания
func (r *Room) SubmitEventCard(playerID, cardID int64) error {
	return r.exec(func() error { return r.submitEventCard(playerID, cardID) })
}

// PlayDetectiveSet валидирует и выкладывает новый детективный сет; отменяемый
// эффект проходит через окно прерывания, неотменяемый применяется сразу
func (r *Room) PlayDetectiveSet(playerID int64, cardIDs []int64, targetSecretID, targetPlayerID *int64) (*domain.DetectiveSet, error) {
	var set *domain.DetectiveSet
	err := r.exec(func() error {
		var err error
		set, err = r.playDetectiveSet(playerID, cardIDs, targetSecretID, targetPlayerID)
		return err
	})
	return set, err
}

// AddToSet добавляет одну карту к существующему сету (включая путь Оливер)
func (r *Room) AddToSet(playerID, cardID int64, setID string) (*domain.DetectiveSet, error) {
	var set *domain.DetectiveSet
	err := r.exec(func() error {
		var err error
		set, err = r.addToSet(playerID, cardID, setID)
		return err
	})
	return set, err
}

// SubmitCounter играет Not So Fast против открытого окна
func (r *Room) SubmitCounter(playerID, counterCardID int64) error {
	return r.exec(func() error { return r.submitCounter(playerID, counterCardID) })
}

// StartVote запускает голосование "укажи подозреваемого"
func (r *Room) StartVote(initiatorID, cardID int64) error {
	return r.exec(func() error { return r.startVote(initiatorID, cardID) })
}

func (r *Room) CastVote(voterID, accusedID int64) error {
	return r.exec(func() error { return r.castVote(voterID, accusedID) })
}

// RevealChoice - обвинённый выбирает один из своих скрытых секретов
func (r *Room) RevealChoice(playerID, secretID int64) error {
	return r.exec(func() error { return r.revealChoice(playerID, secretID) })
}

// FinishVote - инициатор расходует карту события, закрывая раунд
func (r *Room) FinishVote(initiatorID int64) error {
	return r.exec(func() error { return r.finishVote(initiatorID) })
}

// Busy сообщает, держит ли RoomLock открытое действие или голосование
func (r *Room) Busy() bool {
	busy := false
	_ = r.exec(func() error {
		busy = r.lock.busy()
		return nil
	})
	return busy
}

func (r *Room) Seats() []int64 {
	return append([]int64(nil), r.seats...)
}

// --- состояние стола ---

func (r *Room) seated(playerID int64) bool {
	for _, s := range r.seats {
		if s == playerID {
			return true
		}
	}
	return false
}

func (r *Room) handCard(playerID, cardID int64) (domain.Card, bool) {
	for _, c := range r.hands[playerID] {
		if c.ID == cardID {
			return c, true
		}
	}
	return domain.Card{}, false
}

// removeFromHand изымает карту из руки; владение фиксируется в store
func (r *Room) removeFromHand(playerID, cardID int64) (domain.Card, bool) {
	hand := r.hands[playerID]
	for i, c := range hand {
		if c.ID == cardID {
			r.hands[playerID] = append(hand[:i], hand[i+1:]...)
			return c, true
		}
	}
	return domain.Card{}, false
}

// discard расходует карту из руки игрока и рассылает событие
func (r *Room) discard(playerID, cardID int64) error {
	if _, ok := r.removeFromHand(playerID, cardID); !ok {
		return ErrUnknownCard
	}
	r.persistCardOwner(cardID, nil)
	r.emit(evtCardDiscarded(playerID, cardID))
	return nil
}

func (r *Room) playDetectiveSet(playerID int64, cardIDs []int64, targetSecretID, targetPlayerID *int64) (*domain.DetectiveSet, error) {
	if !r.seated(playerID) {
		return nil, ErrUnknownPlayer
	}
	if r.lock.busy() {
		return nil, ErrRoomBusy
	}

	// один и тот же card_id дважды в интенте - попытка раздуть сет
	seen := make(map[int64]struct{}, len(cardIDs))
	cards := make([]domain.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return nil, &deck.ValidationError{Reason: "карта не может входить в сет дважды"}
		}
		seen[id] = struct{}{}
		c, ok := r.handCard(playerID, id)
		if !ok {
			return nil, ErrUnknownCard
		}
		cards = append(cards, c)
	}

	set, err := deck.ValidateNewSet(cards)
	if err != nil {
		return nil, err
	}
	set.OwnerID = playerID

	// коммитим стол до любого broadcast'а
	for _, id := range cardIDs {
		r.removeFromHand(playerID, id)
	}
	r.sets[set.ID] = set
	r.emit(evtSetPlayed(set))

	if set.IsCancellable {
		return set, r.openWindow(domain.PendingDetectiveEffect, playerID, &domain.PendingAction{
			SetID:          &set.ID,
			TargetSecretID: targetSecretID,
			TargetPlayerID: targetPlayerID,
		})
	}

	// неотменяемый сет (пара Бересфордов) применяется без окна
	r.applyDetectiveEffect(set, targetSecretID, targetPlayerID)
	return set, nil
}

func (r *Room) addToSet(playerID, cardID int64, setID string) (*domain.DetectiveSet, error) {
	if !r.seated(playerID) {
		return nil, ErrUnknownPlayer
	}
	card, ok := r.handCard(playerID, cardID)
	if !ok {
		return nil, ErrUnknownCard
	}
	target, ok := r.sets[setID]
	if !ok {
		return nil, ErrUnknownCard
	}

	// пока по этому сету открыто окно отмены, его состав заморожен:
	// иначе добавление Таппенс гасит is_cancellable посреди отсчёта
	if p := r.lock.pending; p != nil && p.IsOpen() && p.SetID != nil && *p.SetID == setID {
		return nil, ErrRoomBusy
	}

	// Оливер идёт своим путём агрегатора
	if deck.DetectiveName(card.Name) == deck.AriadneOliver {
		updated, err := deck.ValidateAggregatorAddition(card, target)
		if err != nil {
			return nil, err
		}
		r.removeFromHand(playerID, cardID)
		*target = *updated
		r.emit(evtSetUpdated(target))
		return target, nil
	}

	res, err := deck.ValidateAddition(card, target)
	if err != nil {
		return nil, err
	}
	r.removeFromHand(playerID, cardID)
	target.CardIDs = append(target.CardIDs, cardID)
	if res.FlipToNonCancellable {
		// одностороннее гашение: обратно в true флаг не возвращается никогда
		target.IsCancellable = false
		target.MainDetective = domain.MainDetectivePair
	}
	r.emit(evtSetUpdated(target))
	return target, nil
}

// releaseLock отпускает затвор и шлёт идемпотентный gameUnlock
func (r *Room) releaseLock() {
	r.lock.pending = nil
	r.lock.vote = nil
	r.emit(evtGameUnlock())
}

// --- асинхронная фиксация в репозитории, в духе saveResult ---

func (r *Room) persistCardOwner(cardID int64, ownerID *int64) {
	if r.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.SaveCardOwner(ctx, cardID, ownerID); err != nil {
			log.Printf("Room.persistCardOwner: room=%s card=%d failed: %v", r.ID, cardID, err)
		}
	}()
}

func (r *Room) persistSecret(s domain.SecretCard) {
	if r.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.SaveSecretRevealed(ctx, s.ID, s.IsRevealed); err != nil {
			log.Printf("Room.persistSecret: room=%s secret=%d failed: %v", r.ID, s.ID, err)
		}
	}()
}

func (r *Room) persistTransfer(t domain.OwnershipTransfer) {
	if r.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.RecordTransfer(ctx, t); err != nil {
			log.Printf("Room.persistTransfer: room=%s card=%d failed: %v", r.ID, t.CardID, err)
		}
	}()
}
