package telegram

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/garyellow/prep-library-bot/internal/bot"
	"github.com/garyellow/prep-library-bot/internal/catalog"
	"github.com/garyellow/prep-library-bot/internal/logger"
	"github.com/garyellow/prep-library-bot/internal/reply"
	"github.com/garyellow/prep-library-bot/internal/search"
)

type fakeClient struct {
	mu        sync.Mutex
	updates   chan tgbotapi.Update
	stopOnce  sync.Once
	sent      []tgbotapi.Chattable
	failPhoto bool
	config    tgbotapi.UpdateConfig
}

func newFakeClient() *fakeClient {
	return &fakeClient{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.mu.Lock()
	f.config = cfg
	f.mu.Unlock()
	return f.updates
}

func (f *fakeClient) StopReceivingUpdates() {
	f.stopOnce.Do(func() { close(f.updates) })
}

func (f *fakeClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, isPhoto := c.(tgbotapi.PhotoConfig); isPhoto && f.failPhoto {
		return tgbotapi.Message{}, errors.New("Bad Request: wrong file identifier/HTTP URL specified")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeClient) Sent() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

func newTestPoller(client Client, books ...catalog.Book) *Poller {
	log := logger.NewWithWriter("error", io.Discard)
	matcher := search.NewMatcher(catalog.New("test.xlsx", books))
	formatter := reply.NewFormatter("https://help", "https://community", reply.WithEscaper(EscapeMarkdown))

	return NewPoller(PollerConfig{
		Client: client,
		Handler: bot.NewHandler(bot.HandlerConfig{
			Searcher:  matcher,
			Formatter: formatter,
			Limit:     3,
			Logger:    log,
		}),
		Dispatcher:  bot.NewDispatcher("telegram", log, nil),
		Logger:      log,
		PollTimeout: 30 * time.Second,
	})
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 10,
			From:      &tgbotapi.User{ID: 99},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func commandUpdate(chatID int64, command string) tgbotapi.Update {
	u := textUpdate(chatID, command)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return u
}

var physics = catalog.Book{Name: "Physics Vol 1", Author: "A. Kumar", Edition: "3rd", DownloadURL: "http://x/1"}

func TestHandleUpdate_Start(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	newTestPoller(client).HandleUpdate(context.Background(), commandUpdate(42, "/start"))

	sent := client.Sent()
	require.Len(t, sent, 1)
	msg, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, reply.WelcomeText, msg.Text)
	assert.Empty(t, msg.ParseMode)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestHandleUpdate_StartWithBotName(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	newTestPoller(client).HandleUpdate(context.Background(), commandUpdate(42, "/start@PrepLibraryBot"))
	require.Len(t, client.Sent(), 1)
}

func TestHandleUpdate_QueryText(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	newTestPoller(client, physics).HandleUpdate(context.Background(), textUpdate(7, "Physics Vol1"))

	sent := client.Sent()
	require.Len(t, sent, 1)
	msg, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok, "text-only book must use sendMessage")
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "Physics Vol 1")
	assert.Contains(t, msg.Text, "A. Kumar")

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 1)
}

func TestHandleUpdate_QueryPhoto(t *testing.T) {
	t.Parallel()

	book := physics
	book.CoverURL = "https://img.example.com/p.jpg"

	client := newFakeClient()
	newTestPoller(client, book).HandleUpdate(context.Background(), textUpdate(7, "physics vol 1"))

	sent := client.Sent()
	require.Len(t, sent, 1)
	photo, ok := sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok, "book with cover must use sendPhoto")
	assert.Equal(t, tgbotapi.FileURL("https://img.example.com/p.jpg"), photo.File)
	assert.Contains(t, photo.Caption, "Physics Vol 1")
	assert.Equal(t, tgbotapi.ModeMarkdown, photo.ParseMode)
}

func TestHandleUpdate_NotFound(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	chem := catalog.Book{Name: "Chemistry Basics", DownloadURL: "http://x/2"}
	newTestPoller(client, chem).HandleUpdate(context.Background(), textUpdate(7, "xyzzy unrelated"))

	sent := client.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, reply.NotFoundText, sent[0].(tgbotapi.MessageConfig).Text)
}

func TestHandleUpdate_PhotoFailureContinues(t *testing.T) {
	t.Parallel()

	withCover := catalog.Book{Name: "Physics", DownloadURL: "http://x/0", CoverURL: "https://broken.example.com/x.jpg"}
	plain := catalog.Book{Name: "PHYSICS", DownloadURL: "http://x/1"}

	client := newFakeClient()
	client.failPhoto = true
	newTestPoller(client, withCover, plain).HandleUpdate(context.Background(), textUpdate(7, "physics"))

	sent := client.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].(tgbotapi.MessageConfig).Text, "PHYSICS")
}

func TestHandleUpdate_Ignored(t *testing.T) {
	t.Parallel()

	edited := textUpdate(7, "physics")
	edited.EditedMessage, edited.Message = edited.Message, nil

	photoOnly := textUpdate(7, "")
	photoOnly.Message.Photo = []tgbotapi.PhotoSize{{FileID: "abc"}}

	tests := map[string]tgbotapi.Update{
		"edited message":  edited,
		"non-text":        photoOnly,
		"unknown command": commandUpdate(7, "/help"),
		"empty update":    {UpdateID: 5},
	}

	for name, update := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			client := newFakeClient()
			newTestPoller(client, physics).HandleUpdate(context.Background(), update)
			assert.Empty(t, client.Sent())
		})
	}
}

func TestRun_HandlesUpdatesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := newFakeClient()
	p := newTestPoller(client, physics)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	client.updates <- commandUpdate(1, "/start")
	client.updates <- textUpdate(2, "Physics Vol1")

	assert.Eventually(t, func() bool { return len(client.Sent()) == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)

	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, p.Shutdown(shutdownCtx))

	client.mu.Lock()
	assert.Equal(t, 30, client.config.Timeout)
	client.mu.Unlock()
}

func TestRun_ChannelClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := newFakeClient()
	p := newTestPoller(client)
	client.StopReceivingUpdates()

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Shutdown(context.Background()))
}
