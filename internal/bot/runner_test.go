package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PostItBot/internal/app"
	"PostItBot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records what the runner asks of Telegram.
type fakeAPI struct {
	requestErr map[string]error
	setErr     error

	requests      []tgbotapi.Chattable
	setWebhook    tgbotapi.Params
	pollingConfig *tgbotapi.UpdateConfig
	updates       chan tgbotapi.Update
	stopped       bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		requestErr: make(map[string]error),
		updates:    make(chan tgbotapi.Update),
	}
}

func (f *fakeAPI) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	switch c.(type) {
	case tgbotapi.DeleteWebhookConfig:
		if err := f.requestErr["deleteWebhook"]; err != nil {
			return nil, err
		}
	case tgbotapi.SetMyCommandsConfig:
		if err := f.requestErr["setMyCommands"]; err != nil {
			return nil, err
		}
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	if endpoint == "setWebhook" {
		f.setWebhook = params
		if f.setErr != nil {
			return nil, f.setErr
		}
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetWebhookInfo() (tgbotapi.WebhookInfo, error) {
	return tgbotapi.WebhookInfo{URL: "https://wall.example.test/telegram/webhook"}, nil
}

func (f *fakeAPI) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.pollingConfig = &u
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopped = true
}

func webhookConfig(secret string) config.BotConfig {
	return config.BotConfig{
		Token:         "token",
		WebhookURL:    "https://wall.example.test/telegram/webhook",
		WebhookPath:   config.DefaultWebhookPath,
		WebhookSecret: secret,
	}
}

func TestRunner_StartPollingFailsWhenWebhookCannotBeDeleted(t *testing.T) {
	api := newFakeAPI()
	api.requestErr["deleteWebhook"] = errors.New("Unauthorized")
	lifecycle := app.NewLifecycle()

	runner := newRunner(api, config.BotConfig{Token: "token"}, nil, "", lifecycle)

	err := runner.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete webhook")
	assert.Nil(t, api.pollingConfig)
	assert.False(t, lifecycle.BotActive())

	assert.EqualError(t, runner.Run(context.Background()), "telegram bot not started")
	assert.False(t, lifecycle.BotActive())
}

func TestRunner_StartWebhookFailsWhenWebhookCannotBeSet(t *testing.T) {
	api := newFakeAPI()
	api.setErr = errors.New("Bad Request: bad webhook")

	runner := newRunner(api, webhookConfig("wall_secret"), nil, "", app.NewLifecycle())

	err := runner.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set webhook")
}

func TestRunner_CommandRegistrationFailureIsNotFatal(t *testing.T) {
	api := newFakeAPI()
	api.requestErr["setMyCommands"] = errors.New("Too Many Requests")

	runner := newRunner(api, config.BotConfig{Token: "token"}, nil, "", app.NewLifecycle())

	require.NoError(t, runner.Start(context.Background()))
	require.NotNil(t, api.pollingConfig)
}

func TestRunner_StartWebhookRegistersSecret(t *testing.T) {
	api := newFakeAPI()
	runner := newRunner(api, webhookConfig("wall_secret"), nil, "", app.NewLifecycle())

	require.NoError(t, runner.Start(context.Background()))
	assert.Nil(t, api.pollingConfig)

	require.NotNil(t, api.setWebhook)
	assert.Equal(t, "https://wall.example.test/telegram/webhook", api.setWebhook["url"])
	assert.Equal(t, "wall_secret", api.setWebhook["secret_token"])
	assert.Equal(t, `["message"]`, api.setWebhook["allowed_updates"])
}

func TestRunner_GeneratesWebhookSecret(t *testing.T) {
	api := newFakeAPI()
	runner := newRunner(api, webhookConfig(""), nil, "", app.NewLifecycle())

	require.NoError(t, runner.Start(context.Background()))
	secret := api.setWebhook["secret_token"]
	assert.NotEmpty(t, secret)
	assert.Equal(t, runner.Webhook().secret, secret)
}

func TestRunner_RunTracksLifecycle(t *testing.T) {
	api := newFakeAPI()
	lifecycle := app.NewLifecycle()
	runner := newRunner(api, config.BotConfig{Token: "token"}, nil, "", lifecycle)

	require.NoError(t, runner.Start(context.Background()))
	require.NotNil(t, api.pollingConfig)
	assert.Equal(t, []string{"message"}, api.pollingConfig.AllowedUpdates)
	assert.Nil(t, runner.Webhook())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	assert.Eventually(t, lifecycle.BotActive, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.False(t, lifecycle.BotActive())
	assert.True(t, api.stopped)
}

const helloUpdate = `{"update_id": 501, "message": {"message_id": 9, "from": {"id": 42, "is_bot": false, "first_name": "Alice", "username": "alice"}, "chat": {"id": 42, "type": "private"}, "date": 1700000000, "text": "Hello"}}`

func postUpdate(webhook *Webhook, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(helloUpdate))
	if secret != "" {
		req.Header.Set(headerWebhookSecret, secret)
	}
	rr := httptest.NewRecorder()
	webhook.ServeHTTP(rr, req)
	return rr
}

func TestWebhook_QueuesUpdates(t *testing.T) {
	webhook := NewWebhook(1, "wall_secret")

	rr := postUpdate(webhook, "wall_secret")
	assert.Equal(t, http.StatusOK, rr.Code)

	update := <-webhook.Updates()
	assert.Equal(t, 501, update.UpdateID)
	require.NotNil(t, update.Message)
	assert.Equal(t, "Hello", update.Message.Text)
	assert.Equal(t, int64(42), update.Message.From.ID)
}

func TestWebhook_RejectsForgedUpdates(t *testing.T) {
	webhook := NewWebhook(1, "wall_secret")

	assert.Equal(t, http.StatusUnauthorized, postUpdate(webhook, "").Code)
	assert.Equal(t, http.StatusUnauthorized, postUpdate(webhook, "guessed").Code)
	assert.Empty(t, webhook.updates)

	unset := NewWebhook(1, "")
	assert.Equal(t, http.StatusUnauthorized, postUpdate(unset, "").Code)
}

func TestWebhook_RejectsBadRequests(t *testing.T) {
	webhook := NewWebhook(1, "wall_secret")

	rr := httptest.NewRecorder()
	webhook.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/telegram/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{not json"))
	req.Header.Set(headerWebhookSecret, "wall_secret")
	rr = httptest.NewRecorder()
	webhook.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBotCommands(t *testing.T) {
	cfg := BotCommands()

	var names []string
	for _, c := range cfg.Commands {
		names = append(names, c.Command)
	}
	assert.Equal(t, []string{CommandStart, CommandHelp, CommandStats}, names)
}
