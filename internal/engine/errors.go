package engine

import "errors"

// Типизированные отказы движка. Ни один из них не роняет цикл комнаты:
// операция возвращает ошибку, поток интентов продолжает обрабатываться.
var (
	// другое PendingAction или голосование уже открыто; клиент может повторить
	ErrRoomBusy = errors.New("room busy")
	// запоздавшая отмена или повторный голос; тихо отклоняется и логируется
	ErrAlreadyResolved = errors.New("already resolved")
	// голос подан вне очереди
	ErrNotYourTurn = errors.New("not your turn")
	// некорректный интент
	ErrUnknownCard   = errors.New("unknown card")
	ErrUnknownPlayer = errors.New("unknown player")
)
