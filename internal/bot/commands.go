package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PostItBot/internal/database/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate mockgen -destination=mock_sender_test.go -package=bot PostItBot/internal/bot Sender

// Sender is the part of *tgbotapi.BotAPI used to deliver replies.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NoteStore is what the bot needs from the note store.
type NoteStore interface {
	Create(ctx context.Context, question string, userID *int64, username *string) (*models.Note, error)
	Count(ctx context.Context) (int64, error)
	DistinctSubmitterCount(ctx context.Context) (int64, error)
}

const (
	msgSaveFailed  = "❌ Could not save your question.\nPlease try again."
	msgStatsFailed = "❌ Could not load statistics"

	timeLayout = "2006-01-02 15:04:05"
)

type MessageHandler struct {
	bot    Sender
	store  NoteStore
	webURL string
	now    func() time.Time
}

func NewMessageHandler(bot Sender, store NoteStore, webURL string) *MessageHandler {
	return &MessageHandler{
		bot:    bot,
		store:  store,
		webURL: webURL,
		now:    time.Now,
	}
}

func (h *MessageHandler) sendMessage(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)

	if keyboard.Keyboard != nil {
		msg.ReplyMarkup = keyboard
	} else {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	return nil
}

// SendMessage delivers text to chatID. Delivery errors are returned, not retried.
func (h *MessageHandler) SendMessage(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	return h.sendMessage(chatID, text, keyboard)
}

// reply sends text with the main keyboard and logs a failed delivery.
func (h *MessageHandler) reply(chatID int64, text string) {
	if err := h.sendMessage(chatID, text, CreateMainMenuKeyboard()); err != nil {
		slog.Error("Reply failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
	}
}

func (h *MessageHandler) SendStartMessage(chatID int64) {
	text := `👋 Hi! I am the Post-it Notes bot.

📝 Send me any question and I will pin it to the wall.
🌐 Every question is visible on the web page.

Commands:
/start - Start the bot
/help - Help
/stats - Statistics`

	h.reply(chatID, text)
}

func (h *MessageHandler) SendHelp(chatID int64) {
	text := fmt.Sprintf(`ℹ️ How to use:

1️⃣ Send me any question
2️⃣ I save it
3️⃣ All questions show up on the web page

💡 Example: "How should I start learning Go?"

🌐 Web: %s`, h.webURL)

	h.reply(chatID, text)
}

// StatsMessage renders the note and submitter totals with the current time.
func (h *MessageHandler) StatsMessage(ctx context.Context) (string, error) {
	total, err := h.store.Count(ctx)
	if err != nil {
		return "", err
	}

	users, err := h.store.DistinctSubmitterCount(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("📊 Statistics:\n\n📝 Total questions: %d\n👥 Users: %d\n⏰ Time: %s",
		total, users, h.now().Format(timeLayout)), nil
}

func (h *MessageHandler) SendStats(ctx context.Context, chatID int64) {
	text, err := h.StatsMessage(ctx)
	if err != nil {
		slog.Error("Stats failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		h.reply(chatID, msgStatsFailed)
		return
	}

	h.reply(chatID, text)
}

// SaveQuestion stores text as a new note attributed to the sender and
// confirms with the note id.
func (h *MessageHandler) SaveQuestion(ctx context.Context, chatID int64, from *tgbotapi.User, text string) {
	userID, username := submitter(from)

	note, err := h.store.Create(ctx, text, userID, username)
	if err != nil {
		slog.Error("Saving question failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		h.reply(chatID, msgSaveFailed)
		return
	}

	slog.Info("Question saved", slog.Uint64("note_id", uint64(note.ID)), slog.Int64("chat_id", chatID))
	h.reply(chatID, fmt.Sprintf("✅ Your question was saved! (ID: %d)\n🌐 You can see it on the web page.", note.ID))
}

// submitter returns the sender's id and handle, falling back to the first
// name when the account has no username.
func submitter(from *tgbotapi.User) (*int64, *string) {
	if from == nil {
		return nil, nil
	}

	id := from.ID
	name := from.UserName
	if name == "" {
		name = from.FirstName
	}
	if name == "" {
		return &id, nil
	}
	return &id, &name
}
