package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"dotc_server/internal/domain"
	"dotc_server/internal/engine"
	"dotc_server/internal/repository"
)

// Hub держит активные комнаты и сопоставление игрок -> комната.
// Комнаты независимы и работают параллельно; внутри одной комнаты
// все интенты сериализует цикл engine.Room
type Hub struct {
	Rooms    map[string]*Room
	UserRoom map[int64]string
	mu       sync.RWMutex

	Players *repository.PlayerRepository
	Cards   *repository.CardRepository
	Secrets *repository.SecretCardRepository
	Store   engine.Store

	// длительность окна прерывания, 0 = значение движка по умолчанию
	Countdown time.Duration
}

func NewHub(players *repository.PlayerRepository, cards *repository.CardRepository, secrets *repository.SecretCardRepository, store engine.Store, countdown time.Duration) *Hub {
	return &Hub{
		Rooms:     make(map[string]*Room),
		UserRoom:  make(map[int64]string),
		Players:   players,
		Cards:     cards,
		Secrets:   secrets,
		Store:     store,
		Countdown: countdown,
	}
}

// GetOrCreateRoom возвращает комнату, поднимая её при первом входе:
// стол (места, руки, секреты) загружается из репозиториев
func (h *Hub) GetOrCreateRoom(ctx context.Context, roomID string) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.Rooms[roomID]; ok {
		return room, nil
	}

	setup, err := h.loadTable(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room := newRoom(roomID)
	room.core = engine.NewRoom(roomID, setup, room, h.Store, h.Countdown)
	h.Rooms[roomID] = room

	log.Printf("Hub.GetOrCreateRoom: создана комната=%s мест=%d, запуск Run()", roomID, len(setup.Seats))
	go room.core.Run()
	go room.Run()
	return room, nil
}

func (h *Hub) loadTable(ctx context.Context, roomID string) (engine.TableSetup, error) {
	setup := engine.TableSetup{Hands: make(map[int64][]domain.Card)}

	// без репозиториев (dev-режим) комната поднимается с пустым столом
	if h.Players == nil {
		return setup, nil
	}

	seats, err := h.Players.SeatOrder(ctx, roomID)
	if err != nil {
		return setup, err
	}
	for _, s := range seats {
		setup.Seats = append(setup.Seats, s.PlayerID)
		hand, err := h.Cards.GetByOwner(ctx, roomID, s.PlayerID)
		if err != nil {
			return setup, err
		}
		setup.Hands[s.PlayerID] = hand
	}

	secrets, err := h.Secrets.GetByGame(ctx, roomID)
	if err != nil {
		return setup, err
	}
	setup.Secrets = secrets
	return setup, nil
}

// AttachClient привязывает клиента к комнате и регистрирует его в цикле комнаты
func (h *Hub) AttachClient(room *Room, c *Client) {
	h.mu.Lock()
	h.UserRoom[c.PlayerID] = room.ID
	h.mu.Unlock()

	// неблокирующая отправка для избежания deadlock'а, если room.Run() завершился
	select {
	case room.Register <- c:
		log.Printf("Hub.AttachClient: зарегистрирован игрок=%d в комнату=%s", c.PlayerID, room.ID)
	case <-time.After(5 * time.Second):
		log.Printf("Hub.AttachClient: ТАЙМАУТ регистрации игрока=%d в комнату=%s", c.PlayerID, room.ID)
	}
}

func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	roomID, ok := h.UserRoom[c.PlayerID]
	if ok {
		delete(h.UserRoom, c.PlayerID)
	}
	room := h.Rooms[roomID]
	h.mu.Unlock()

	if room == nil {
		return
	}
	log.Printf("Hub.OnDisconnect: игрок=%d комната=%s", c.PlayerID, roomID)
	// отключение посреди открытого окна ничего не ускоряет: окно всё равно
	// разрешится по дедлайну, комната продолжает жить
	select {
	case room.Disconnect <- c:
	default:
		log.Printf("Hub.OnDisconnect: комната=%s канал Disconnect заполнен/закрыт", roomID)
	}
}

// RoomStatus - срез состояния комнаты для наблюдателей (админ-бот, REST)
type RoomStatus struct {
	ID      string  `json:"id"`
	Seats   []int64 `json:"seats"`
	Clients int     `json:"clients"`
	Busy    bool    `json:"busy"`
}

func (h *Hub) Status() []RoomStatus {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	out := make([]RoomStatus, 0, len(rooms))
	for _, r := range rooms {
		r.mu.RLock()
		clients := len(r.Clients)
		r.mu.RUnlock()
		out = append(out, RoomStatus{
			ID:      r.ID,
			Seats:   r.core.Seats(),
			Clients: clients,
			Busy:    r.core.Busy(),
		})
	}
	return out
}

// StartCleanup периодически убирает опустевшие комнаты
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.cleanupStaleRooms()
		}
	}()
}

func (h *Hub) cleanupStaleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()

	for roomID, room := range h.Rooms {
		room.mu.RLock()
		clientsCount := len(room.Clients)
		createdAt := room.createdAt
		room.mu.RUnlock()

		if clientsCount == 0 && now.Sub(createdAt) > time.Hour {
			room.core.Close()
			close(room.quit)
			delete(h.Rooms, roomID)

			for uid, rid := range h.UserRoom {
				if rid == roomID {
					delete(h.UserRoom, uid)
				}
			}

			log.Printf("очищена устаревшая комната: %s", roomID)
		}
	}
}
