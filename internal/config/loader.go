package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/edgard/breadbot/internal/brand"
)

// Load reads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (optional; defaults apply when missing)
// 3. BREADBOT_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BREADBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env cover everything
		// except credentials.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.checkCredentials(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkCredentials enforces the credential requirements that depend on the
// run mode, which struct tags cannot express.
func (c *Config) checkCredentials() error {
	if c.TestMode {
		return nil
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required unless test_mode is enabled")
	}
	if c.Instagram.AccessToken == "" {
		return fmt.Errorf("instagram.access_token is required unless test_mode is enabled")
	}
	if c.Instagram.AccountID == "" {
		return fmt.Errorf("instagram.account_id is required unless test_mode is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	// Storage defaults
	v.SetDefault("storage.inbound_dir", DefaultInboundDir)
	v.SetDefault("storage.staged_dir", DefaultStagedDir)
	v.SetDefault("storage.published_dir", DefaultPublishedDir)

	// Watcher defaults
	v.SetDefault("watcher.allowed_extensions", DefaultAllowedExtensions)
	v.SetDefault("watcher.settle_delay", DefaultSettleDelay)

	// Publisher defaults
	v.SetDefault("publisher.max_attempts", DefaultPublishMaxAttempts)

	// Responder defaults
	v.SetDefault("responder.window_days", DefaultCommentWindowDays)
	v.SetDefault("responder.product_keywords", DefaultProductKeywords)
	v.SetDefault("responder.fallback_reply", DefaultFallbackReply)

	// Gemini defaults
	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelaySeconds)

	// Instagram defaults
	v.SetDefault("instagram.base_url", DefaultInstagramBaseURL)
	v.SetDefault("instagram.timeout", DefaultInstagramTimeout)
	v.SetDefault("instagram.username", "breadsmithlakecharles")

	// Database defaults
	v.SetDefault("database.path", DefaultDBPath)

	// Scheduler defaults
	v.SetDefault("scheduler.tasks.publish_check.enabled", true)
	v.SetDefault("scheduler.tasks.publish_check.schedule", DefaultPublishSchedule)
	v.SetDefault("scheduler.tasks.comment_check.enabled", true)
	v.SetDefault("scheduler.tasks.comment_check.schedule", DefaultCommentSchedule)
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultMaintenanceSchedule)

	// Brand defaults
	p := brand.DefaultProfile()
	v.SetDefault("brand.tone", p.Tone)
	v.SetDefault("brand.values", p.Values)
	v.SetDefault("brand.key_phrases", p.KeyPhrases)
	v.SetDefault("brand.hashtags", p.Hashtags)
	v.SetDefault("brand.first_person_phrases", p.FirstPersonPhrases)
	v.SetDefault("brand.connection_phrases", p.ConnectionPhrases)
	v.SetDefault("brand.trigger_rules", p.TriggerRules)
	v.SetDefault("brand.owner.name", p.Owner.Name)
	v.SetDefault("brand.owner.years", p.Owner.Years)
	v.SetDefault("brand.owner.favorites", p.Owner.Favorites)
	v.SetDefault("brand.owner.story", p.Owner.Story)

	v.SetDefault("test_mode", false)
}
