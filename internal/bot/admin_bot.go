package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dotc_server/internal/logger"
	"dotc_server/internal/repository"
	"dotc_server/internal/ws"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminBot - операционный бот: админы смотрят активные столы и игроков
// прямо из Telegram, без доступа к серверу
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	hub      *ws.Hub
	players  *repository.PlayerRepository
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func NewAdminBot(token string, hub *ws.Hub, players *repository.PlayerRepository, adminIDs []int64) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", api.Self.UserName)

	return &AdminBot{
		bot:      api,
		hub:      hub,
		players:  players,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start запускает прослушивание команд
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()

	case "stats":
		response = b.handleStats()

	case "rooms":
		response = b.handleRooms()

	case "player":
		response = b.handlePlayer(ctx, msg.CommandArguments())

	default:
		response = "Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return `<b>Команды оператора</b>

/stats - Сводка по серверу
/rooms - Активные комнаты
/player &lt;id&gt; - Информация об игроке`
}

func (b *AdminBot) handleStats() string {
	rooms := b.hub.Status()

	totalClients := 0
	busyRooms := 0
	for _, r := range rooms {
		totalClients += r.Clients
		if r.Busy {
			busyRooms++
		}
	}

	return fmt.Sprintf(`<b>Сводка по серверу</b>

- Комнат: %d
- Подключений: %d
- Комнат под затвором: %d`,
		len(rooms), totalClients, busyRooms)
}

func (b *AdminBot) handleRooms() string {
	rooms := b.hub.Status()
	if len(rooms) == 0 {
		return "Нет активных комнат"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Активные комнаты (%d)</b>\n\n", len(rooms)))

	for _, r := range rooms {
		state := "свободна"
		if r.Busy {
			state = "затвор"
		}
		sb.WriteString(fmt.Sprintf("<code>%s</code> | мест: %d | онлайн: %d | %s\n",
			r.ID, len(r.Seats), r.Clients, state))
	}

	return sb.String()
}

func (b *AdminBot) handlePlayer(ctx context.Context, args string) string {
	if args == "" {
		return "Использование: /player &lt;id&gt;"
	}

	var playerID int64
	if _, err := fmt.Sscanf(strings.TrimSpace(args), "%d", &playerID); err != nil {
		return "Неверный ID игрока"
	}

	player, err := b.players.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Sprintf("Игрок не найден: %v", err)
	}

	return fmt.Sprintf(`<b>Игрок</b>

- ID: %d
- Имя: %s
- Регистрация: %s`,
		player.ID,
		player.Name,
		player.CreatedAt.Format("02.01.2006 15:04"),
	)
}
