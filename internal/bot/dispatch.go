package bot

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/garyellow/prep-library-bot/internal/ctxutil"
	apperrors "github.com/garyellow/prep-library-bot/internal/errors"
	"github.com/garyellow/prep-library-bot/internal/logger"
	"github.com/garyellow/prep-library-bot/internal/metrics"
	"github.com/garyellow/prep-library-bot/internal/reply"
	"github.com/garyellow/prep-library-bot/internal/sentry"
)

// Sender delivers one payload to the chat an update came from.
type Sender interface {
	Send(ctx context.Context, p reply.Payload) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, p reply.Payload) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, p reply.Payload) error {
	return f(ctx, p)
}

// Dispatcher wraps per-update work with tracing, panic recovery and metrics,
// and delivers payloads in order.
type Dispatcher struct {
	platform string
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher creates a Dispatcher for one platform.
func NewDispatcher(platform string, log *logger.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{platform: platform, logger: log, metrics: m}
}

// Platform returns the platform label used in logs and metrics.
func (d *Dispatcher) Platform() string {
	return d.platform
}

// Track runs fn for one inbound update. The context passed to fn carries the
// platform and a request ID, generated when ctx has none. A panic in fn is
// recovered, logged and reported.
func (d *Dispatcher) Track(ctx context.Context, eventType string, fn func(ctx context.Context) error) {
	start := time.Now()
	ctx = ctxutil.WithPlatform(ctx, d.platform)
	if id, ok := ctxutil.GetRequestID(ctx); !ok || id == "" {
		ctx = ctxutil.WithRequestID(ctx, uuid.NewString())
	}

	status := "success"
	defer func() {
		if r := recover(); r != nil {
			err := sentry.RecoverPanic(ctx, r)
			d.logger.WithError(err).
				WithField("event_type", eventType).
				WithField("stack", string(debug.Stack())).
				ErrorContext(ctx, "Update handler panicked")
			status = "error"
		}
		d.metrics.RecordUpdate(d.platform, eventType, status, time.Since(start).Seconds())
	}()

	if err := fn(ctx); err != nil {
		status = "error"
		d.logger.WithError(err).WithField("event_type", eventType).ErrorContext(ctx, "Update handling failed")
		sentry.CaptureException(ctx, err, map[string]string{"event_type": eventType})
	}
}

// Deliver sends payloads one at a time in the given order. A failed send is
// logged, counted and reported, then delivery moves on to the next payload.
// It returns the number of payloads sent successfully.
func (d *Dispatcher) Deliver(ctx context.Context, s Sender, payloads []reply.Payload) int {
	sent := 0
	for i, p := range payloads {
		if err := ctx.Err(); err != nil {
			d.logger.WithError(err).WithField("remaining", len(payloads)-i).WarnContext(ctx, "Delivery cancelled")
			return sent
		}

		if err := s.Send(ctx, p); err != nil {
			sendErr := apperrors.NewSendError(d.platform, string(p.Kind), err)
			d.metrics.RecordSend(d.platform, string(p.Kind), "error")
			d.logger.WithError(sendErr).WithField("position", i).WarnContext(ctx, "Send failed, continuing")
			sentry.CaptureException(ctx, sendErr, map[string]string{"kind": string(p.Kind)})
			continue
		}

		d.metrics.RecordSend(d.platform, string(p.Kind), "success")
		sent++
	}
	return sent
}
