// Package config manages application configuration from default values,
// a YAML config file, and BREADBOT_* environment variables.
package config

import (
	"time"

	"github.com/edgard/breadbot/internal/brand"
)

// LogConfig controls log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// StorageConfig defines the three directory areas the pipeline moves media
// through. Inbound receives new photos, staged holds ready records awaiting
// publish, published is the permanent archive.
type StorageConfig struct {
	InboundDir   string `mapstructure:"inbound_dir"   validate:"required"`
	StagedDir    string `mapstructure:"staged_dir"    validate:"required"`
	PublishedDir string `mapstructure:"published_dir" validate:"required"`
}

// WatcherConfig controls the inbound directory watcher.
type WatcherConfig struct {
	AllowedExtensions []string      `mapstructure:"allowed_extensions" validate:"required,min=1"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"       validate:"min=0,max=1m"`
}

// PublisherConfig controls the ready-to-posted transition. MaxAttempts of
// zero means a record in ready state is retried on every tick indefinitely;
// a positive value moves the record to the terminal error state once
// exceeded.
type PublisherConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`
}

// ResponderConfig controls the comment-response pass.
type ResponderConfig struct {
	WindowDays      int      `mapstructure:"window_days"      validate:"required,min=1"`
	ProductKeywords []string `mapstructure:"product_keywords" validate:"required,min=1"`
	FallbackReply   string   `mapstructure:"fallback_reply"   validate:"required"`
}

// GeminiConfig holds settings for the Gemini AI collaborator.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"               validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

// InstagramConfig holds credentials and settings for the Instagram Graph API
// collaborator. Username is the account's own handle, used to skip the
// system's own comments.
type InstagramConfig struct {
	AccessToken string        `mapstructure:"access_token"`
	AccountID   string        `mapstructure:"account_id"`
	Username    string        `mapstructure:"username"     validate:"required"`
	BaseURL     string        `mapstructure:"base_url"     validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"min=1s,max=10m"`
}

// DatabaseConfig holds settings for the customer memory store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TaskConfig defines schedule and enablement for one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Config defines the application configuration for all components. Values can
// be set through config.yaml or environment variables prefixed with BREADBOT_
// (e.g. BREADBOT_GEMINI_API_KEY).
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Watcher   WatcherConfig   `mapstructure:"watcher"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Responder ResponderConfig `mapstructure:"responder"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Instagram InstagramConfig `mapstructure:"instagram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Brand     brand.Profile   `mapstructure:"brand"`

	// TestMode swaps the Gemini and Instagram collaborators for in-process
	// mocks. Credentials are not required in this mode.
	TestMode bool `mapstructure:"test_mode"`
}
