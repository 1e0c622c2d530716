package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"dotc_server/internal/deck"
	"dotc_server/internal/engine"
)

// Message - исходящий конверт; Type совпадает с типом события движка
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// intent - входящий конверт от клиента; лишние поля игнорируются
type intent struct {
	Type           string  `json:"type"`
	CardID         int64   `json:"card_id,omitempty"`
	CardIDs        []int64 `json:"card_ids,omitempty"`
	SetID          string  `json:"set_id,omitempty"`
	TargetSecretID *int64  `json:"target_secret_id,omitempty"`
	TargetPlayerID *int64  `json:"target_player_id,omitempty"`
	SecretID       int64   `json:"secret_id,omitempty"`
	AccusedID      int64   `json:"accused_id,omitempty"`
}

// Room - транспортная обёртка над игровой комнатой: держит сокеты и
// переводит JSON-интенты в вызовы движка. Вся игровая логика живёт в core
type Room struct {
	ID      string
	Clients map[int64]*Client

	Register   chan *Client
	Disconnect chan *Client
	quit       chan struct{}

	mu        sync.RWMutex
	createdAt time.Time

	core *engine.Room
}

func newRoom(id string) *Room {
	return &Room{
		ID:         id,
		Clients:    make(map[int64]*Client),
		Register:   make(chan *Client, 8),
		Disconnect: make(chan *Client, 8),
		quit:       make(chan struct{}),
		createdAt:  time.Now(),
	}
}

func (r *Room) Run() {
	log.Printf("Room.Run: запуск комнаты=%s", r.ID)
	for {
		select {
		case c := <-r.Register:
			r.handleRegister(c)
		case c := <-r.Disconnect:
			r.handleDisconnect(c)
		case <-r.quit:
			log.Printf("Room.Run: комната=%s завершена", r.ID)
			return
		}
	}
}

func (r *Room) handleRegister(c *Client) {
	r.mu.Lock()
	r.Clients[c.PlayerID] = c
	clients := len(r.Clients)
	r.mu.Unlock()

	log.Printf("Room.handleRegister: комната=%s игрок=%d подключено=%d", r.ID, c.PlayerID, clients)

	// acknowledge registration to the handler by closing the channel
	if c.Registered != nil {
		close(c.Registered)
	}

	r.send(c.PlayerID, Message{
		Type: "state",
		Payload: map[string]any{
			"room_id": r.ID,
			"seats":   r.core.Seats(),
			"players": clients,
			"busy":    r.core.Busy(),
		},
	})
}

func (r *Room) handleDisconnect(c *Client) {
	r.mu.Lock()
	delete(r.Clients, c.PlayerID)
	left := len(r.Clients)
	r.mu.Unlock()

	// комнату не закрываем: открытое окно или голосование доигрываются,
	// игрок может переподключиться
	log.Printf("Room.handleDisconnect: комната=%s игрок=%d осталось=%d", r.ID, c.PlayerID, left)
}

// Broadcast рассылает событие движка всем клиентам комнаты.
// Вызывается из цикла engine.Room (одна горутина), сокеты разгружают
// буферизованные Send-каналы
func (r *Room) Broadcast(roomID string, evt engine.Event) {
	data, err := json.Marshal(Message{Type: evt.Type, Payload: evt.Payload})
	if err != nil {
		log.Printf("Room.Broadcast: ошибка маршалинга: %v", err)
		return
	}

	r.mu.RLock()
	clients := make(map[int64]*Client, len(r.Clients))
	for k, v := range r.Clients {
		clients[k] = v
	}
	r.mu.RUnlock()

	for playerID, c := range clients {
		select {
		case c.Send <- data:
		case <-time.After(2 * time.Second):
			log.Printf("Room.Broadcast: таймаут отправки игроку=%d type=%s", playerID, evt.Type)
		}
	}
}

// HandleMessage разбирает интент и передаёт его движку; ошибка уходит
// только отправителю, остальные видят лишь события состоявшихся действий
func (r *Room) HandleMessage(c *Client, raw []byte) {
	var msg intent
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Room.HandleMessage: не удалось разобрать: %v", err)
		r.sendError(c.PlayerID, "BadRequest", "malformed message")
		return
	}

	log.Printf("Room.HandleMessage: комната=%s игрок=%d type=%s", r.ID, c.PlayerID, msg.Type)

	var err error
	switch msg.Type {
	case "submitCancellableAction":
		err = r.core.SubmitEventCard(c.PlayerID, msg.CardID)

	case "playDetectiveSet", "validateSet":
		_, err = r.core.PlayDetectiveSet(c.PlayerID, msg.CardIDs, msg.TargetSecretID, msg.TargetPlayerID)

	case "addToSet":
		_, err = r.core.AddToSet(c.PlayerID, msg.CardID, msg.SetID)

	case "submitCounter":
		err = r.core.SubmitCounter(c.PlayerID, msg.CardID)

	case "startVote":
		err = r.core.StartVote(c.PlayerID, msg.CardID)

	case "castVote":
		err = r.core.CastVote(c.PlayerID, msg.AccusedID)

	case "revealSecret":
		err = r.core.RevealChoice(c.PlayerID, msg.SecretID)

	case "finishVote":
		err = r.core.FinishVote(c.PlayerID)

	default:
		r.sendError(c.PlayerID, "UnknownIntent", "unknown message type: "+msg.Type)
		return
	}

	if err != nil {
		log.Printf("Room.HandleMessage: отклонено игрок=%d type=%s: %v", c.PlayerID, msg.Type, err)
		r.sendError(c.PlayerID, reasonFor(err), err.Error())
	}
}

// reasonFor сводит ошибки движка к машинно-читаемым кодам для клиента
func reasonFor(err error) string {
	var vErr *deck.ValidationError
	switch {
	case errors.As(err, &vErr):
		return "ValidationError"
	case errors.Is(err, engine.ErrRoomBusy):
		return "RoomBusy"
	case errors.Is(err, engine.ErrAlreadyResolved):
		return "AlreadyResolved"
	case errors.Is(err, engine.ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, engine.ErrUnknownCard):
		return "UnknownCard"
	case errors.Is(err, engine.ErrUnknownPlayer):
		return "UnknownPlayer"
	default:
		return "InternalError"
	}
}

func (r *Room) sendError(playerID int64, reason, message string) {
	r.send(playerID, Message{
		Type: "error",
		Payload: map[string]string{
			"reason":  reason,
			"message": message,
		},
	})
}

func (r *Room) send(playerID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Room.send: ошибка маршалинга: %v", err)
		return
	}

	r.mu.RLock()
	c, ok := r.Clients[playerID]
	r.mu.RUnlock()

	if !ok {
		log.Printf("Room.send: игрок=%d не в комнате=%s", playerID, r.ID)
		return
	}
	select {
	case c.Send <- data:
	case <-time.After(2 * time.Second):
		log.Printf("Room.send: таймаут отправки игроку=%d type=%s", playerID, msg.Type)
	}
}
