// Package bot holds the chat logic shared by every transport: classifying an
// inbound text, running the search, and delivering the resulting payloads in order.
package bot

import (
	"context"
	"strings"

	"github.com/garyellow/prep-library-bot/internal/catalog"
	"github.com/garyellow/prep-library-bot/internal/logger"
	"github.com/garyellow/prep-library-bot/internal/reply"
	"github.com/garyellow/prep-library-bot/internal/search"
)

// CommandStart is the only command the bot answers.
const CommandStart = "start"

// Event classifies an inbound text for logs and metrics.
type Event string

const (
	EventStart   Event = "start"
	EventQuery   Event = "query"
	EventIgnored Event = "ignored"
	EventFollow  Event = "follow"
)

// Searcher returns ranked books for a query. *search.Matcher implements it.
type Searcher interface {
	Books(query string, limit int) []catalog.Book
}

// HandlerConfig holds dependencies for NewHandler.
type HandlerConfig struct {
	Searcher  Searcher
	Formatter *reply.Formatter
	Limit     int
	Logger    *logger.Logger
}

// Handler turns one inbound text into zero or more payloads.
// It keeps no per-user state and is safe for concurrent use.
type Handler struct {
	searcher  Searcher
	formatter *reply.Formatter
	limit     int
	logger    *logger.Logger
}

// NewHandler creates a Handler. A non-positive Limit uses search.DefaultLimit.
func NewHandler(cfg HandlerConfig) *Handler {
	limit := cfg.Limit
	if limit < 1 {
		limit = search.DefaultLimit
	}
	return &Handler{
		searcher:  cfg.Searcher,
		formatter: cfg.Formatter,
		limit:     limit,
		logger:    cfg.Logger,
	}
}

// HandleText routes a raw message body. Commands go to HandleCommand; anything
// else is a search query used verbatim.
func (h *Handler) HandleText(ctx context.Context, text string) (Event, []reply.Payload) {
	if command, ok := ParseCommand(text); ok {
		return h.HandleCommand(ctx, command)
	}
	return EventQuery, h.HandleQuery(ctx, text)
}

// HandleCommand answers /start and ignores every other command.
func (h *Handler) HandleCommand(ctx context.Context, command string) (Event, []reply.Payload) {
	if command != CommandStart {
		h.logger.WithField("command", command).DebugContext(ctx, "Ignoring unknown command")
		return EventIgnored, nil
	}
	return EventStart, []reply.Payload{reply.Welcome()}
}

// HandleQuery searches the catalog and formats one payload per book, best first.
// No match yields the single not-found payload.
func (h *Handler) HandleQuery(ctx context.Context, query string) []reply.Payload {
	books := h.searcher.Books(query, h.limit)

	h.logger.WithFields(map[string]any{
		"query_length": len([]rune(query)),
		"results":      len(books),
	}).DebugContext(ctx, "Search completed")

	return h.formatter.FormatAll(books)
}

// HandleFollow greets a user who added the bot.
func (h *Handler) HandleFollow(_ context.Context) (Event, []reply.Payload) {
	return EventFollow, []reply.Payload{reply.Welcome()}
}

// ParseCommand reports whether text is a bot command and returns its lower-cased
// name without the leading slash, arguments, or an @botname suffix.
func ParseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	name := strings.TrimPrefix(text, "/")
	if i := strings.IndexFunc(name, isCommandEnd); i >= 0 {
		name = name[:i]
	}
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

func isCommandEnd(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
