package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Binance struct {
		APIKey    string   `yaml:"api_key"`
		SecretKey string   `yaml:"secret_key"`
		BaseURL   string   `yaml:"base_url"`
		Testnet   bool     `yaml:"testnet"`
		Symbols   []string `yaml:"symbols"`
	} `yaml:"binance"`
	Sync struct {
		Cron         string `yaml:"cron"`
		Timezone     string `yaml:"timezone"`
		LookbackDays int    `yaml:"lookback_days"`
		RunOnStart   bool   `yaml:"run_on_start"`
	} `yaml:"sync"`
	Scoring struct {
		Strategy      string  `yaml:"strategy"` // "linear" or "log_tier"
		PointsPerUnit float64 `yaml:"points_per_unit"`
	} `yaml:"scoring"`
	Planner struct {
		DailyTradeCap  int     `yaml:"daily_trade_cap"`
		LeverageFactor float64 `yaml:"leverage_factor"`
	} `yaml:"planner"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
		File     string `yaml:"file"` // optional, stderr only when empty
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Load reads .env (if present) and the YAML file, then applies environment
// variable overrides and defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Binance.SecretKey = v
	}
	if v := os.Getenv("BINANCE_SYMBOLS"); v != "" {
		c.Binance.Symbols = splitList(v)
	}
	if v := os.Getenv("SYNC_CRON"); v != "" {
		c.Sync.Cron = v
	}
	if v := os.Getenv("SCORING_STRATEGY"); v != "" {
		c.Scoring.Strategy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Sync.Cron == "" {
		c.Sync.Cron = "0 0 9,21 * * *"
	}
	if c.Sync.Timezone == "" {
		c.Sync.Timezone = "Asia/Shanghai"
	}
	if c.Sync.LookbackDays == 0 {
		c.Sync.LookbackDays = 30
	}
	if c.Scoring.PointsPerUnit == 0 {
		c.Scoring.PointsPerUnit = 2
	}
	if c.Planner.DailyTradeCap == 0 {
		c.Planner.DailyTradeCap = 2
	}
	if c.Planner.LeverageFactor == 0 {
		c.Planner.LeverageFactor = 2
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/alpha.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
}

// Validate checks the settings every entry point needs. Exchange
// credentials are checked separately by HasCredentials since the planner
// works without them.
func (c *Config) Validate() error {
	switch c.Scoring.Strategy {
	case "linear", "log_tier":
	case "":
		return fmt.Errorf("scoring.strategy is required (linear or log_tier)")
	default:
		return fmt.Errorf("scoring.strategy %q is not supported", c.Scoring.Strategy)
	}
	if c.Sync.LookbackDays < 0 {
		return fmt.Errorf("sync.lookback_days must not be negative")
	}
	if c.Planner.DailyTradeCap < 0 {
		return fmt.Errorf("planner.daily_trade_cap must not be negative")
	}
	if c.Planner.LeverageFactor < 0 {
		return fmt.Errorf("planner.leverage_factor must not be negative")
	}
	if c.HasCredentials() && len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols must list at least one symbol")
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("sync.timezone: %w", err)
	}
	return nil
}

func (c *Config) HasCredentials() bool {
	return c.Binance.APIKey != "" && c.Binance.SecretKey != ""
}

func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Sync.LookbackDays) * 24 * time.Hour
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}
