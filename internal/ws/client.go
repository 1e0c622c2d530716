package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	PlayerID int64
	Conn     *websocket.Conn
	Send     chan []byte

	Hub        *Hub
	Room       *Room
	Registered chan struct{}
	Done       chan struct{}
	pendingMu  sync.Mutex
	pending    [][]byte
}

func NewClient(playerID int64, conn *websocket.Conn, hub *Hub, room *Room) *Client {
	return &Client{
		PlayerID:   playerID,
		Conn:       conn,
		Send:       make(chan []byte, 1024),
		Hub:        hub,
		Room:       room,
		Registered: make(chan struct{}),
		Done:       make(chan struct{}),
	}
}

func (c *Client) Run() {
	// writer первым, чтобы регистрация могла сразу слать state
	go c.writePump()

	// readPump рано, чтобы не потерять интенты до регистрации
	go c.readPump()

	c.Hub.AttachClient(c.Room, c)

	// ждём подтверждения регистрации и доигрываем буфер
	select {
	case <-c.Registered:
	case <-time.After(5 * time.Second):
		log.Printf("Client.Run: таймаут регистрации игрока=%d", c.PlayerID)
	}
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = nil
	c.pendingMu.Unlock()
	for _, m := range pending {
		c.Room.HandleMessage(c, m)
	}

	<-c.Done
}

// read
func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			log.Println("ошибка чтения:", err)
			break
		}

		select {
		case <-c.Registered:
			c.Room.HandleMessage(c, msg)
		default:
			// буферизуем до подтверждения регистрации
			c.pendingMu.Lock()
			c.pending = append(c.pending, append([]byte(nil), msg...))
			c.pendingMu.Unlock()
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: игрок=%d ошибка записи: %v", c.PlayerID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect
func (c *Client) disconnect() {
	c.Hub.OnDisconnect(c)
	_ = c.Conn.Close()
}
