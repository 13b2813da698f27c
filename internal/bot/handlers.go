package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jellydator/ttlcache/v3"
)

const (
	seenUpdatesTTL      = 10 * time.Minute
	seenUpdatesCapacity = 10000
)

type UpdateHandler struct {
	msgHandler *MessageHandler
	seen       *ttlcache.Cache[int, struct{}]
}

func NewUpdateHandler(bot Sender, store NoteStore, webURL string) *UpdateHandler {
	return &UpdateHandler{
		msgHandler: NewMessageHandler(bot, store, webURL),
		seen: ttlcache.New(
			ttlcache.WithTTL[int, struct{}](seenUpdatesTTL),
			ttlcache.WithCapacity[int, struct{}](seenUpdatesCapacity),
			ttlcache.WithDisableTouchOnHit[int, struct{}](),
		),
	}
}

// HandleUpdates processes updates one at a time until the channel closes or
// ctx is cancelled.
func (h *UpdateHandler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	go h.seen.Start()
	defer h.seen.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate answers a single update. Every handled message gets exactly
// one reply; anything else is ignored.
func (h *UpdateHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil || message.From.IsBot {
		return
	}

	if _, seen := h.seen.GetOrSet(update.UpdateID, struct{}{}); seen {
		slog.Debug("Duplicate update dropped", slog.Int("update_id", update.UpdateID))
		return
	}

	chatID := message.Chat.ID
	slog.Debug("Update received", slog.Int64("chat_id", chatID), slog.Int("update_id", update.UpdateID))

	if message.IsCommand() {
		switch message.Command() {
		case CommandStart:
			h.msgHandler.SendStartMessage(chatID)
		case CommandStats:
			h.msgHandler.SendStats(ctx, chatID)
		default:
			h.msgHandler.SendHelp(chatID)
		}
		return
	}

	// Photos, stickers and other non-text messages carry no question.
	if message.Text == "" {
		return
	}

	h.msgHandler.SaveQuestion(ctx, chatID, message.From, message.Text)
}

func (h *UpdateHandler) GetMessageHandler() *MessageHandler {
	return h.msgHandler
}
