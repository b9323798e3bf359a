package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses yaml strings like "60s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		ValuationBaseURL string `yaml:"valuation_base_url"`
		QuoteBaseURL     string `yaml:"quote_base_url"`
	} `yaml:"data_source"`
	Refresh struct {
		Interval    Duration `yaml:"interval"`
		Concurrency int      `yaml:"concurrency"`
		MaxRetries  int      `yaml:"max_retries"`
		RetryDelay  Duration `yaml:"retry_delay"`
	} `yaml:"refresh"`
	Retry struct {
		MaxRetries        int      `yaml:"max_retries"`
		BaseDelay         Duration `yaml:"base_delay"`
		MaxDelay          Duration `yaml:"max_delay"`
		BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	} `yaml:"retry"`
	Storage struct {
		FundFile   string `yaml:"fund_file"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults and
// env carry a usable configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FUND_FILE"); v != "" {
		cfg.Storage.FundFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.Refresh.Interval = Duration(dur)
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.DataSource.ValuationBaseURL == "" {
		cfg.DataSource.ValuationBaseURL = "https://fundgz.1234567.com.cn"
	}
	if cfg.DataSource.QuoteBaseURL == "" {
		cfg.DataSource.QuoteBaseURL = "https://qt.gtimg.cn"
	}
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = Duration(time.Minute)
	}
	if cfg.Refresh.Concurrency == 0 {
		cfg.Refresh.Concurrency = 5
	}
	if cfg.Refresh.MaxRetries == 0 {
		cfg.Refresh.MaxRetries = 3
	}
	if cfg.Refresh.RetryDelay == 0 {
		cfg.Refresh.RetryDelay = Duration(2 * time.Second)
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = Duration(time.Second)
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = Duration(10 * time.Second)
	}
	if cfg.Retry.BackoffMultiplier == 0 {
		cfg.Retry.BackoffMultiplier = 2.0
	}
	if cfg.Storage.FundFile == "" {
		cfg.Storage.FundFile = "data/funds.json"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/fundeye.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.DataSource.ValuationBaseURL == "" {
		return fmt.Errorf("data_source.valuation_base_url is required")
	}
	if c.DataSource.QuoteBaseURL == "" {
		return fmt.Errorf("data_source.quote_base_url is required")
	}
	if c.Refresh.Concurrency < 1 {
		return fmt.Errorf("refresh.concurrency must be positive")
	}
	if c.Refresh.Interval.Std() < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s")
	}
	if c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("retry.backoff_multiplier must be >= 1")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
