package config

// Environment variable keys.
//
//nolint:gosec // Environment variable keys are not credentials.
const (
	// Transport
	EnvPlatform            = "BOT_PLATFORM"
	EnvTelegramToken       = "TELEGRAM_BOT_TOKEN"
	EnvLegacyToken         = "TOKEN"
	EnvTelegramPollTimeout = "TELEGRAM_POLL_TIMEOUT"
	EnvLineChannelToken    = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret   = "LINE_CHANNEL_SECRET"

	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	// Catalog and search
	EnvCatalogPath          = "CATALOG_PATH"
	EnvSearchResultLimit    = "SEARCH_RESULT_LIMIT"
	EnvSearchScoreThreshold = "SEARCH_SCORE_THRESHOLD"

	// Reply links
	EnvHowToDownloadURL = "HOW_TO_DOWNLOAD_URL"
	EnvCommunityURL     = "COMMUNITY_URL"

	// Metrics
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"

	// Sentry (Better Stack Errors)
	EnvSentryToken       = "SENTRY_TOKEN"
	EnvSentryHost        = "SENTRY_HOST"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"

	// Better Stack Logs
	EnvBetterStackToken    = "BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"

	// R2 catalog source
	EnvR2AccountID       = "R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "R2_BUCKET_NAME"
	EnvR2CatalogKey      = "R2_CATALOG_KEY"
)
