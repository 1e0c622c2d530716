package engine

import (
	"log"

	"github.com/google/uuid"

	"dotc_server/internal/deck"
	"dotc_server/internal/domain"
)

// Окно прерывания: Open -> Cancelled | ResolvedActive (оба терминальны).
// Вложенных окон нет - контр-карту контрить нельзя.

// submitEventCard открывает окно для отменяемой карты события
func (r *Room) submitEventCard(playerID, cardID int64) error {
	if !r.seated(playerID) {
		return ErrUnknownPlayer
	}
	if r.lock.busy() {
		return ErrRoomBusy
	}
	card, ok := r.handCard(playerID, cardID)
	if !ok {
		return ErrUnknownCard
	}
	// через окно играются только карты событий; детектив или мгновенная
	// карта окно не открывает
	if card.Kind != domain.KindEvent {
		return ErrUnknownCard
	}
	return r.openWindow(domain.PendingEventCard, playerID, &domain.PendingAction{CardID: &cardID})
}

// openWindow создаёт PendingAction, захватывает RoomLock и запускает отсчёт.
// payload приходит предзаполненным полями конкретного вида действия.
func (r *Room) openWindow(kind domain.PendingKind, initiatorID int64, payload *domain.PendingAction) error {
	p := payload
	p.ID = uuid.NewString()
	p.Kind = kind
	p.InitiatorID = initiatorID
	p.State = domain.PendingOpen
	p.Deadline = r.now().Add(r.countdown)

	r.lock.pending = p
	windowsOpened.Inc()
	log.Printf("Room.openWindow: room=%s action=%s kind=%s initiator=%d", r.ID, p.ID, kind, initiatorID)

	// состояние закоммичено - теперь broadcast
	r.emit(evtEventStarted(p))

	// тики и дедлайн инжектируются в ту же очередь, что и интенты игроков
	windowID := p.ID
	if r.tickEvery > 0 && r.countdown > r.tickEvery {
		r.schedule(r.tickEvery, func() error { return r.handleTick(windowID) })
	}
	r.schedule(r.countdown, func() error { return r.handleDeadline(windowID) })
	return nil
}

// handleTick шлёт информационный COUNTDOWN_TICK, пока окно открыто
func (r *Room) handleTick(windowID string) error {
	p := r.lock.pending
	if p == nil || p.ID != windowID || !p.IsOpen() {
		return nil // окно уже разрешилось, тик устарел
	}
	remaining := int(p.Deadline.Sub(r.now()) / r.tickEvery)
	if remaining < 0 {
		remaining = 0
	}
	r.emit(evtCountdownTick(remaining))
	if remaining > 0 {
		windowIDCopy := windowID
		r.schedule(r.tickEvery, func() error { return r.handleTick(windowIDCopy) })
	}
	return nil
}

// submitCounter - первый валидный контр выигрывает; все последующие попытки
// получают AlreadyResolved
func (r *Room) submitCounter(playerID, counterCardID int64) error {
	if !r.seated(playerID) {
		return ErrUnknownPlayer
	}
	p := r.lock.pending
	if p == nil || !p.IsOpen() {
		log.Printf("Room.submitCounter: room=%s stale counter from player=%d", r.ID, playerID)
		return ErrAlreadyResolved
	}

	card, ok := r.handCard(playerID, counterCardID)
	if !ok {
		return ErrUnknownCard
	}
	if card.Name != deck.CardNotSoFast {
		return ErrUnknownCard
	}

	// переход Open -> Cancelled; контр-карта расходуется, эффект не применяется
	p.State = domain.PendingCancelled
	windowsCancelled.Inc()
	if err := r.discard(playerID, counterCardID); err != nil {
		return err
	}

	// если отменена карта события - она тоже уходит в сброс
	if p.Kind == domain.PendingEventCard && p.CardID != nil {
		if err := r.discard(p.InitiatorID, *p.CardID); err != nil {
			log.Printf("Room.submitCounter: room=%s discard of countered card failed: %v", r.ID, err)
		}
	}

	r.releaseLock()
	log.Printf("Room.submitCounter: room=%s action=%s cancelled by player=%d", r.ID, p.ID, playerID)
	r.emit(evtEventCancelled(playerID), evtCountdownEnd("cancelled"))
	return nil
}

// handleDeadline: если окно всё ещё открыто - ResolvedActive и диспатч эффекта
func (r *Room) handleDeadline(windowID string) error {
	p := r.lock.pending
	if p == nil || p.ID != windowID || !p.IsOpen() {
		return nil // отменено раньше в очереди; дедлайн устарел
	}

	p.State = domain.PendingResolved
	windowsResolved.Inc()
	r.releaseLock()
	log.Printf("Room.handleDeadline: room=%s action=%s resolved active", r.ID, p.ID)
	r.emit(evtCountdownEnd("active"))

	r.dispatchResolved(p)
	return nil
}

// dispatchResolved применяет эффект действия, дожившего до конца отсчёта.
// Вид действия меняет только пост-диспатч, не правила отмены.
func (r *Room) dispatchResolved(p *domain.PendingAction) {
	switch p.Kind {
	case domain.PendingEventCard:
		// исполнение карты события: сама карта расходуется
		if p.CardID != nil {
			if err := r.discard(p.InitiatorID, *p.CardID); err != nil {
				log.Printf("Room.dispatchResolved: room=%s discard failed: %v", r.ID, err)
			}
		}
	case domain.PendingDetectiveEffect:
		if p.SetID == nil {
			return
		}
		set, ok := r.sets[*p.SetID]
		if !ok {
			log.Printf("Room.dispatchResolved: room=%s set=%s vanished", r.ID, *p.SetID)
			return
		}
		r.applyDetectiveEffect(set, p.TargetSecretID, p.TargetPlayerID)
	}
}

// applyDetectiveEffect применяет эффект сета к выбранному секрету.
// Мутации коммитятся до соответствующего broadcast'а.
func (r *Room) applyDetectiveEffect(set *domain.DetectiveSet, targetSecretID, targetPlayerID *int64) {
	if targetSecretID == nil {
		return // эффект без цели (цель выбирается последующим интентом)
	}
	secretID := *targetSecretID

	var (
		rec     domain.SecretCard
		changed bool
		err     error
	)
	switch set.ActionSecret {
	case domain.ActionRevealYour, domain.ActionRevealTheir:
		rec, changed, err = r.vault.Reveal(secretID, true)
	case domain.ActionHide:
		// hide всегда принудительно скрывает в той же транзакции
		rec, changed, err = r.vault.Reveal(secretID, false)
	}
	if err != nil {
		log.Printf("Room.applyDetectiveEffect: room=%s secret=%d: %v", r.ID, secretID, err)
		return
	}
	if changed {
		r.persistSecret(rec)
		r.emit(evtSecretUpdate(rec))
	}

	// джокер у Саттертуэйта крадёт целевой секрет; is_revealed сохраняется
	if set.WildcardEffect != nil && *set.WildcardEffect == "Satterthwaite" && targetPlayerID != nil {
		moved, err := r.vault.TransferOwnership(secretID, *targetPlayerID, set.OwnerID)
		if err != nil {
			log.Printf("Room.applyDetectiveEffect: room=%s transfer secret=%d: %v", r.ID, secretID, err)
			return
		}
		r.persistTransfer(domain.OwnershipTransfer{
			CardID:     secretID,
			FromPlayer: *targetPlayerID,
			ToPlayer:   set.OwnerID,
			OccurredAt: r.now(),
		})
		r.emit(evtSecretUpdate(moved))
	}
}
