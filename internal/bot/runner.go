package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"PostItBot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const headerWebhookSecret = "X-Telegram-Bot-Api-Secret-Token"

var allowedUpdates = []string{"message"}

// BotAPI is the part of *tgbotapi.BotAPI the runner drives.
type BotAPI interface {
	Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Lifecycle receives the bot's active state.
type Lifecycle interface {
	SetBotActive(active bool)
}

// Runner owns the Telegram connection. Start sets up long polling or the
// webhook; Run feeds updates to the UpdateHandler.
type Runner struct {
	api       BotAPI
	cfg       config.BotConfig
	handler   *UpdateHandler
	lifecycle Lifecycle
	webhook   *Webhook
	updates   tgbotapi.UpdatesChannel
}

func NewRunner(cfg config.BotConfig, store NoteStore, webURL string, lifecycle Lifecycle) (*Runner, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}

	slog.Info("Authorized on account", slog.String("username", api.Self.UserName))
	return newRunner(api, cfg, store, webURL, lifecycle), nil
}

func newRunner(api BotAPI, cfg config.BotConfig, store NoteStore, webURL string, lifecycle Lifecycle) *Runner {
	r := &Runner{
		api:       api,
		cfg:       cfg,
		handler:   NewUpdateHandler(api, store, webURL),
		lifecycle: lifecycle,
	}
	if cfg.WebhookURL != "" {
		secret := cfg.WebhookSecret
		if secret == "" {
			secret = uuid.NewString()
		}
		r.webhook = NewWebhook(100, secret)
	}
	return r
}

// Webhook returns the HTTP receiver in webhook mode, or nil when polling.
func (r *Runner) Webhook() *Webhook {
	return r.webhook
}

func (r *Runner) MessageHandler() *MessageHandler {
	return r.handler.GetMessageHandler()
}

// Start registers the command menu and connects the update transport.
// Transport errors are returned so the caller can abort startup.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.api.Request(BotCommands()); err != nil {
		slog.Warn("Could not register bot commands", slog.Any("err", err))
	}

	if r.webhook != nil {
		if err := r.registerWebhook(); err != nil {
			return err
		}
		r.updates = r.webhook.Updates()
		return nil
	}

	if _, err := r.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = allowedUpdates
	r.updates = r.api.GetUpdatesChan(u)
	return nil
}

// Run blocks until ctx is cancelled. Start must have succeeded first.
func (r *Runner) Run(ctx context.Context) error {
	if r.updates == nil {
		return errors.New("telegram bot not started")
	}
	if r.webhook == nil {
		defer r.api.StopReceivingUpdates()
	}

	r.lifecycle.SetBotActive(true)
	defer r.lifecycle.SetBotActive(false)
	slog.Info("Telegram bot ready", slog.Bool("webhook", r.webhook != nil))

	r.handler.HandleUpdates(ctx, r.updates)
	slog.Info("Telegram bot stopped")
	return nil
}

// registerWebhook calls setWebhook directly because WebhookConfig has no
// secret_token field.
func (r *Runner) registerWebhook() error {
	params := tgbotapi.Params{
		"url":          r.cfg.WebhookURL,
		"secret_token": r.webhook.secret,
	}
	if err := params.AddInterface("allowed_updates", allowedUpdates); err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}

	if _, err := r.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := r.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		slog.Warn("Telegram webhook reported an error", slog.String("message", info.LastErrorMessage))
	}
	return nil
}

// Webhook is an http.Handler that decodes Telegram updates posted to it and
// queues them for the UpdateHandler. Posts without the registered secret
// token are rejected.
type Webhook struct {
	updates chan tgbotapi.Update
	secret  string
}

func NewWebhook(buffer int, secret string) *Webhook {
	return &Webhook{
		updates: make(chan tgbotapi.Update, buffer),
		secret:  secret,
	}
}

func (w *Webhook) Updates() tgbotapi.UpdatesChannel {
	return w.updates
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := req.Header.Get(headerWebhookSecret)
	if w.secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(w.secret)) != 1 {
		http.Error(rw, "unauthorized", http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		http.Error(rw, "invalid update", http.StatusBadRequest)
		return
	}

	select {
	case w.updates <- update:
	case <-req.Context().Done():
		http.Error(rw, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	rw.WriteHeader(http.StatusOK)
}
