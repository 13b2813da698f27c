package scheduler

import (
	"context"
	"log/slog"
	"time"

	"PostItBot/internal/bot"
	"PostItBot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier renders the stats summary and delivers messages; *bot.MessageHandler
// implements it.
type Notifier interface {
	StatsMessage(ctx context.Context) (string, error)
	SendMessage(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error
}

type Scheduler struct {
	notifier Notifier
	cfg      config.DigestConfig
	now      func() time.Time
}

func NewScheduler(notifier Notifier, cfg config.DigestConfig) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// StartDailyDigest sends the stats summary to the admin chat every day at
// the configured time until ctx is cancelled.
func (s *Scheduler) StartDailyDigest(ctx context.Context) {
	go func() {
		for {
			nextRun := NextRun(s.now(), s.cfg.Hour, s.cfg.Minute)
			wait := nextRun.Sub(s.now())
			slog.Info("Next digest scheduled", slog.Time("at", nextRun), slog.Duration("in", wait))

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			s.SendDigest(ctx)
		}
	}()
}

// SendDigest sends one digest right away.
func (s *Scheduler) SendDigest(ctx context.Context) {
	stats, err := s.notifier.StatsMessage(ctx)
	if err != nil {
		slog.Error("Error building digest", slog.Any("err", err))
		return
	}

	text := "🌅 Good morning! Here is the daily summary:\n\n" + stats
	if err := s.notifier.SendMessage(s.cfg.ChatID, text, bot.CreateMainMenuKeyboard()); err != nil {
		slog.Error("Error sending digest", slog.Int64("chat_id", s.cfg.ChatID), slog.Any("err", err))
	}
}

// NextRun returns the first hour:minute strictly after now, in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
