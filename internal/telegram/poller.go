// Package telegram receives Bot API updates by long polling and answers them
// through the shared bot handler.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/garyellow/prep-library-bot/internal/bot"
	"github.com/garyellow/prep-library-bot/internal/config"
	"github.com/garyellow/prep-library-bot/internal/ctxutil"
	"github.com/garyellow/prep-library-bot/internal/logger"
	"github.com/garyellow/prep-library-bot/internal/reply"
)

// Client is the subset of *tgbotapi.BotAPI the poller uses.
type Client interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewClient authenticates token against the Bot API and routes the library's
// own log lines through log.
func NewClient(token string, log *logger.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(libraryLogger{log: log}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	log.WithField("username", api.Self.UserName).Info("Telegram bot authorized")
	return api, nil
}

// PollerConfig holds dependencies for NewPoller.
type PollerConfig struct {
	Client        Client
	Handler       *bot.Handler
	Dispatcher    *bot.Dispatcher
	Logger        *logger.Logger
	PollTimeout   time.Duration
	UpdateTimeout time.Duration
}

// Poller pulls updates and handles each one on its own goroutine.
// Messages from different chats are independent; payloads for one message are
// sent in ranked order.
type Poller struct {
	client        Client
	handler       *bot.Handler
	dispatcher    *bot.Dispatcher
	logger        *logger.Logger
	pollTimeout   time.Duration
	updateTimeout time.Duration
	wg            sync.WaitGroup
}

// NewPoller creates a Poller. Zero timeouts use the config defaults.
func NewPoller(cfg PollerConfig) *Poller {
	p := &Poller{
		client:        cfg.Client,
		handler:       cfg.Handler,
		dispatcher:    cfg.Dispatcher,
		logger:        cfg.Logger,
		pollTimeout:   cfg.PollTimeout,
		updateTimeout: cfg.UpdateTimeout,
	}
	if p.pollTimeout <= 0 {
		p.pollTimeout = config.DefaultTelegramPollTimeout
	}
	if p.updateTimeout <= 0 {
		p.updateTimeout = config.UpdateProcessing
	}
	return p
}

// Run polls until ctx is cancelled or the update channel closes.
// In-flight updates keep running; call Shutdown to wait for them.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(p.pollTimeout.Seconds())

	updates := p.client.GetUpdatesChan(u)
	p.logger.WithField("poll_timeout", p.pollTimeout.String()).Info("Telegram polling started")

	for {
		select {
		case <-ctx.Done():
			p.client.StopReceivingUpdates()
			p.logger.Info("Telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				p.logger.Warn("Telegram update channel closed")
				return nil
			}
			p.wg.Go(func() {
				p.HandleUpdate(ctx, update)
			})
		}
	}
}

// HandleUpdate answers /start and plain text messages. Other update types,
// edited messages and non-text content are dropped without a reply.
func (p *Poller) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.updateTimeout)
	defer cancel()

	ctx = ctxutil.WithChatID(ctx, strconv.FormatInt(msg.Chat.ID, 10))
	if msg.From != nil {
		ctx = ctxutil.WithUserID(ctx, strconv.FormatInt(msg.From.ID, 10))
	}

	var (
		event    bot.Event
		payloads []reply.Payload
	)
	if msg.IsCommand() {
		event, payloads = p.handler.HandleCommand(ctx, strings.ToLower(msg.Command()))
	} else {
		event = bot.EventQuery
	}

	p.dispatcher.Track(ctx, string(event), func(ctx context.Context) error {
		if event == bot.EventQuery {
			payloads = p.handler.HandleQuery(ctx, msg.Text)
		}
		if len(payloads) == 0 {
			return nil
		}
		sent := p.dispatcher.Deliver(ctx, chatSender{client: p.client, chatID: msg.Chat.ID}, payloads)
		p.logger.WithFields(map[string]any{
			"event_type": string(event),
			"payloads":   len(payloads),
			"sent":       sent,
		}).InfoContext(ctx, "Update processed")
		return nil
	})
}

// Shutdown waits for in-flight updates to finish.
// It returns an error if the context is canceled before completion.
func (p *Poller) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		p.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type chatSender struct {
	client Client
	chatID int64
}

func (s chatSender) Send(_ context.Context, p reply.Payload) error {
	_, err := s.client.Send(Convert(s.chatID, p))
	return err
}

// libraryLogger adapts the Bot API library's Printf-style logger.
type libraryLogger struct {
	log *logger.Logger
}

func (l libraryLogger) Println(v ...any) {
	l.log.WithModule("telegram-api").Warn(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l libraryLogger) Printf(format string, v ...any) {
	l.log.WithModule("telegram-api").Warn(fmt.Sprintf(format, v...))
}
