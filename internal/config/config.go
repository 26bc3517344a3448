// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDividerSticker is the sticker sent after every delivered episode group.
const DefaultDividerSticker = "CAACAgUAAxkBAAEQA6ppQSnwhAAB6b8IKv2TtiG-jcEgsEQAAv0TAAKjMWBUnDlKQXMRBi82BA"

// Config holds all application configuration.
type Config struct {
	// telegram
	TGApiID    int
	TGApiHash  string
	TGBotToken string
	TGRPS      float64 // outgoing request pacing

	// operator allowed to drive the bot (0 = anyone in a private chat)
	OwnerID int64

	// storage
	SessionFile string
	HistoryDB   string
	LockFile    string

	// delivery
	DividerSticker    string
	PromoKeywordsFile string
	PromoKeywords     []string // loaded from PromoKeywordsFile, nil = built-in list
	CaptionText       string   // added to every resent caption
	CaptionPosition   string   // top, bottom or replace

	// nats (empty = publishing disabled)
	NatsURL string

	// status api (0 = disabled)
	HTTPPort int

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		TGApiID:           getEnvInt("TG_API_ID", 0),
		TGApiHash:         getEnv("TG_API_HASH", ""),
		TGBotToken:        getEnv("TG_BOT_TOKEN", ""),
		TGRPS:             getEnvFloat("TG_RPS", 2.0),
		OwnerID:           getEnvInt64("OWNER_ID", 0),
		SessionFile:       getEnv("SESSION_FILE", "./data/relaybot_session.db"),
		HistoryDB:         getEnv("HISTORY_DB", "./data/history.db"),
		LockFile:          getEnv("LOCK_FILE", "./data/relaybot.lock"),
		DividerSticker:    getEnv("DIVIDER_STICKER", DefaultDividerSticker),
		PromoKeywordsFile: getEnv("PROMO_KEYWORDS_FILE", ""),
		CaptionText:       getEnv("CAPTION_TEXT", ""),
		CaptionPosition:   getEnv("CAPTION_POSITION", "bottom"),
		NatsURL:           getEnv("NATS_URL", ""),
		HTTPPort:          getEnvInt("HTTP_PORT", 0),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", "./logs/relaybot.log"),
	}

	if cfg.PromoKeywordsFile != "" {
		keywords, err := LoadPromoKeywords(cfg.PromoKeywordsFile)
		if err != nil {
			return nil, err
		}
		cfg.PromoKeywords = keywords
	}

	return cfg, nil
}

// Validate checks the settings required to talk to telegram.
func (c *Config) Validate() error {
	if c.TGApiID == 0 || c.TGApiHash == "" {
		return errors.New("TG_API_ID and TG_API_HASH are required")
	}
	if c.TGBotToken == "" {
		return errors.New("TG_BOT_TOKEN is required")
	}
	return nil
}

// promoFile is the layout of PROMO_KEYWORDS_FILE.
type promoFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadPromoKeywords reads the promotional phrase list from a yaml file.
func LoadPromoKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read promo keywords: %w", err)
	}

	var f promoFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse promo keywords %s: %w", path, err)
	}
	if len(f.Keywords) == 0 {
		return nil, fmt.Errorf("promo keywords %s: empty keyword list", path)
	}
	return f.Keywords, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
