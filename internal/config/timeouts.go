package config

import "time"

// HTTP listener timeouts. The listener serves the liveness probe, metrics and,
// on the LINE platform, webhook deliveries; all of them are small requests.
const (
	// HTTPRead is the server read (and read-header) timeout.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the server write timeout. LINE webhooks are acknowledged
	// before processing, so this only has to cover serialising a small body.
	HTTPWrite = 15 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second
)

// Startup and shutdown budgets.
const (
	// CatalogFetch bounds the optional download of the catalog object from R2.
	// A slow bucket must not keep the bot from starting on the local copy.
	CatalogFetch = 2 * time.Minute

	// SentryFlush is how long buffered error reports may take on shutdown.
	SentryFlush = 2 * time.Second
)

// DefaultTelegramPollTimeout is the long-poll duration for getUpdates.
const DefaultTelegramPollTimeout = 60 * time.Second

// UpdateProcessing bounds the handling of one inbound update, sends included.
// Updates run on a context detached from shutdown so in-flight replies can finish.
const UpdateProcessing = 60 * time.Second
