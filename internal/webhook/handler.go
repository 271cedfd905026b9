// Package webhook receives LINE webhook callbacks and replies to follow
// events and text messages.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/prep-library-bot/internal/bot"
	"github.com/garyellow/prep-library-bot/internal/config"
	"github.com/garyellow/prep-library-bot/internal/ctxutil"
	apperrors "github.com/garyellow/prep-library-bot/internal/errors"
	"github.com/garyellow/prep-library-bot/internal/lineutil"
	"github.com/garyellow/prep-library-bot/internal/logger"
	"github.com/garyellow/prep-library-bot/internal/metrics"
	"github.com/garyellow/prep-library-bot/internal/reply"
)

// sendKind labels LINE reply calls in send metrics and errors.
const sendKind = "reply"

// Client is the subset of the Messaging API the handler uses.
type Client interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// NewClient creates a Messaging API client for the channel access token.
func NewClient(channelToken string) (Client, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}
	return client, nil
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	Client        Client
	Handler       *bot.Handler
	Dispatcher    *bot.Dispatcher
	Metrics       *metrics.Metrics
	Logger        *logger.Logger

	// EventTimeout bounds the work for one event. Zero uses config.UpdateProcessing.
	EventTimeout time.Duration
}

// Handler handles LINE webhook events
type Handler struct {
	channelSecret string
	client        Client
	handler       *bot.Handler
	dispatcher    *bot.Dispatcher
	metrics       *metrics.Metrics
	logger        *logger.Logger
	eventTimeout  time.Duration
	wg            sync.WaitGroup // async event processing
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		channelSecret: cfg.ChannelSecret,
		client:        cfg.Client,
		handler:       cfg.Handler,
		dispatcher:    cfg.Dispatcher,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		eventTimeout:  cfg.EventTimeout,
	}
	if h.eventTimeout <= 0 {
		h.eventTimeout = config.UpdateProcessing
	}
	return h
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// LINE expects 200 before any reply is sent.
	c.Status(http.StatusOK)

	// Copy events so nothing refers to the request after the response completes.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)
	ctx := ctxutil.PreserveTracing(c.Request.Context())

	h.wg.Go(func() {
		for _, event := range events {
			h.processEvent(ctx, event)
		}
	})
}

// processEvent answers one event. Only follow events and text messages get a reply.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface) {
	var (
		replyToken string
		source     webhook.SourceInterface
		text       string
		eventID    string
		follow     bool
	)

	switch e := event.(type) {
	case webhook.MessageEvent:
		content, ok := e.Message.(webhook.TextMessageContent)
		if !ok || content.Text == "" {
			h.logger.WithField("message_type", fmt.Sprintf("%T", e.Message)).Debug("Ignoring non-text message")
			return
		}
		replyToken, source, text = e.ReplyToken, e.Source, content.Text
		eventID = e.WebhookEventId
	case webhook.FollowEvent:
		replyToken, source, follow = e.ReplyToken, e.Source, true
		eventID = e.WebhookEventId
	default:
		h.logger.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	if replyToken == "" {
		h.logger.Debug("Empty reply token, skipping event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.eventTimeout)
	defer cancel()
	if eventID != "" {
		ctx = ctxutil.WithRequestID(ctx, eventID)
	}
	if id := chatID(source); id != "" {
		ctx = ctxutil.WithChatID(ctx, id)
	}
	if id := userID(source); id != "" {
		ctx = ctxutil.WithUserID(ctx, id)
	}

	var (
		eventType bot.Event
		payloads  []reply.Payload
	)
	switch {
	case follow:
		eventType, payloads = h.handler.HandleFollow(ctx)
	default:
		if command, ok := bot.ParseCommand(text); ok {
			eventType, payloads = h.handler.HandleCommand(ctx, command)
		} else {
			eventType = bot.EventQuery
		}
	}

	h.dispatcher.Track(ctx, string(eventType), func(ctx context.Context) error {
		if eventType == bot.EventQuery {
			payloads = h.handler.HandleQuery(ctx, text)
		}
		if len(payloads) == 0 {
			return nil
		}
		if err := h.reply(ctx, replyToken, payloads); err != nil {
			return err
		}
		h.logger.WithFields(map[string]any{
			"event_type": string(eventType),
			"payloads":   len(payloads),
		}).InfoContext(ctx, "Event processed")
		return nil
	})
}

// reply sends all payloads with one reply token. A reply token accepts at most
// lineutil.MaxMessagesPerReply messages, so any overflow is dropped.
func (h *Handler) reply(ctx context.Context, replyToken string, payloads []reply.Payload) error {
	if len(payloads) > lineutil.MaxMessagesPerReply {
		h.logger.WithField("message_count", len(payloads)).
			WithField("limit", lineutil.MaxMessagesPerReply).
			WarnContext(ctx, "Message count exceeds limit; truncating")
		payloads = payloads[:lineutil.MaxMessagesPerReply]
	}

	_, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   ConvertAll(payloads),
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	h.metrics.RecordSend(h.dispatcher.Platform(), sendKind, status)
	if err != nil {
		return apperrors.NewSendError(h.dispatcher.Platform(), sendKind, err)
	}
	return nil
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
