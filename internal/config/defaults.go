package config

import "time"

// Default values for optional configuration parameters.
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	// Storage defaults
	DefaultInboundDir   = "./uploads"
	DefaultStagedDir    = "./processed"
	DefaultPublishedDir = "./posted"

	// Watcher defaults
	DefaultSettleDelay = time.Second

	// Publisher defaults. Zero retries forever, matching the behavior the
	// pipeline has always had; set a positive value to cap attempts.
	DefaultPublishMaxAttempts = 0

	// Responder defaults
	DefaultCommentWindowDays = 30

	// Gemini defaults
	DefaultGeminiModel             = "gemini-2.0-flash"
	DefaultGeminiTemperature       = 0.7
	DefaultGeminiMaxRetries        = 2
	DefaultGeminiRetryDelaySeconds = 5

	// Instagram defaults
	DefaultInstagramBaseURL = "https://graph.instagram.com/v21.0"
	DefaultInstagramTimeout = 30 * time.Second

	// Database defaults
	DefaultDBPath = "customers.db"

	// Scheduler defaults: post twice a day, check comments every 4 hours,
	// vacuum the customer store nightly.
	DefaultPublishSchedule     = "0 11,15 * * *"
	DefaultCommentSchedule     = "0 */4 * * *"
	DefaultMaintenanceSchedule = "0 3 * * *"
)

// DefaultAllowedExtensions lists the media file extensions accepted by the
// ingestion watcher. Matching is case-insensitive.
var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// DefaultProductKeywords is the fixed product list scanned for mentions in
// customer comments.
var DefaultProductKeywords = []string{
	"bread", "sourdough", "pastry", "roll", "cake", "muffin", "coffee",
}

// DefaultFallbackReply is posted when reply generation fails for a comment.
// %s is the owner's first name.
const DefaultFallbackReply = "Thank you so much for your comment! ❤️ -%s"
