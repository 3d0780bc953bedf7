package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TrendRadar/internal/collector"
	"TrendRadar/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL         string        `yaml:"base_url"`
		QuotePrefix     string        `yaml:"quote_prefix"`
		Unit            int           `yaml:"unit"`
		Count           int           `yaml:"count"`
		TopN            int           `yaml:"top_n"`
		RequestInterval time.Duration `yaml:"request_interval"`
		Timeout         time.Duration `yaml:"timeout"`
		Mock            bool          `yaml:"mock"`
	} `yaml:"data_source"`
	Analysis strategy.Params `yaml:"analysis"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Report struct {
		Top int `yaml:"top"`
	} `yaml:"report"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Workers int    `yaml:"workers"`
	Proxy   string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{Analysis: strategy.DefaultParams()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// A missing .env is normal; the process environment still applies.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("UPBIT_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.TopN = n
		}
	}
	if v := os.Getenv("CANDLE_UNIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.Unit = n
		}
	}
	if os.Getenv("MOCK_DATA") == "true" {
		cfg.DataSource.Mock = true
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = collector.DefaultUpbitURL
	}
	if cfg.DataSource.QuotePrefix == "" {
		cfg.DataSource.QuotePrefix = "KRW-"
	}
	if cfg.DataSource.Unit == 0 {
		cfg.DataSource.Unit = 15
	}
	if cfg.DataSource.Count == 0 {
		cfg.DataSource.Count = 200
	}
	if cfg.DataSource.TopN == 0 {
		cfg.DataSource.TopN = 20
	}
	if cfg.DataSource.RequestInterval == 0 {
		cfg.DataSource.RequestInterval = 80 * time.Millisecond
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 15 * time.Second
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 */15 * * * *"
	}
	if cfg.Report.Top == 0 {
		cfg.Report.Top = 10
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trend_radar.db"
	}

	return cfg, nil
}

// Validate checks the settings needed to scan. Telegram is only required by the daemon.
func (c *Config) Validate() error {
	if !collector.ValidMinuteUnit(c.DataSource.Unit) {
		return fmt.Errorf("data_source.unit %d is not a supported minute unit", c.DataSource.Unit)
	}
	if c.DataSource.Count <= 0 || c.DataSource.Count > 200 {
		return fmt.Errorf("data_source.count must be in 1..200")
	}
	if c.DataSource.TopN < 0 {
		return fmt.Errorf("data_source.top_n must not be negative")
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// ValidateNotifier checks that Telegram credentials are set.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	// Incoming updates carry the numeric chat id; an @username would never match.
	if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
		return fmt.Errorf("telegram.chat_id must be a numeric chat id, got %q", c.Telegram.ChatID)
	}
	return nil
}
