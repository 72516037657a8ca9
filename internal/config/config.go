package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken         string        `yaml:"discord_token"`
	DatabasePath         string        `yaml:"database_path"`
	LogLevel             string        `yaml:"log_level"`
	Presence             string        `yaml:"presence"`
	DefaultModLogChannel string        `yaml:"default_mod_log_channel"`
	Health               HealthConfig  `yaml:"health"`
	Monitor              MonitorConfig `yaml:"monitor"`
	Thresholds           Thresholds    `yaml:"thresholds"`
	Economy              EconomyConfig `yaml:"economy"`
	EmbedColors          EmbedColors   `yaml:"embed_colors"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type MonitorConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

type Thresholds struct {
	SpamMessages       int  `yaml:"spam_messages"`
	SpamWindowSeconds  int  `yaml:"spam_window_seconds"`
	SpamTimeoutMinutes int  `yaml:"spam_timeout_minutes"`
	Enforce            bool `yaml:"enforce"`
}

type EconomyConfig struct {
	RewardCoins       int `yaml:"reward_coins"`
	RewardMessages    int `yaml:"reward_messages"`
	CounterTTLMinutes int `yaml:"counter_ttl_minutes"`
}

type EmbedColors struct {
	Accent  int `yaml:"accent"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath: "/data/auron.db",
		LogLevel:     "info",
		Presence:     "/help • Watching chat activity",
		Health:       HealthConfig{Enabled: false, Addr: ":8080"},
		Monitor:      MonitorConfig{IntervalSeconds: 60},
		Thresholds: Thresholds{
			SpamMessages:       5,
			SpamWindowSeconds:  10,
			SpamTimeoutMinutes: 10,
			Enforce:            true,
		},
		Economy: EconomyConfig{
			RewardCoins:       5,
			RewardMessages:    10,
			CounterTTLMinutes: 30,
		},
		EmbedColors: EmbedColors{
			Accent:  0x111111,
			Warning: 0xF59E0B,
			Error:   0xDC2626,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 60
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Presence = envString("PRESENCE", cfg.Presence)
	cfg.DefaultModLogChannel = envString("DEFAULT_MOD_LOG_CHANNEL", cfg.DefaultModLogChannel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Monitor.IntervalSeconds = envInt("MONITOR_INTERVAL_SECONDS", cfg.Monitor.IntervalSeconds)
	cfg.Thresholds.SpamMessages = envInt("SPAM_MESSAGES", cfg.Thresholds.SpamMessages)
	cfg.Thresholds.SpamWindowSeconds = envInt("SPAM_WINDOW_SECONDS", cfg.Thresholds.SpamWindowSeconds)
	cfg.Thresholds.SpamTimeoutMinutes = envInt("SPAM_TIMEOUT_MINUTES", cfg.Thresholds.SpamTimeoutMinutes)
	cfg.Thresholds.Enforce = envBool("SPAM_ENFORCE", cfg.Thresholds.Enforce)
	cfg.Economy.RewardCoins = envInt("ECONOMY_REWARD_COINS", cfg.Economy.RewardCoins)
	cfg.Economy.RewardMessages = envInt("ECONOMY_REWARD_MESSAGES", cfg.Economy.RewardMessages)
	cfg.Economy.CounterTTLMinutes = envInt("ECONOMY_COUNTER_TTL_MINUTES", cfg.Economy.CounterTTLMinutes)
	cfg.EmbedColors.Accent = envInt("EMBED_COLOR_ACCENT", cfg.EmbedColors.Accent)
	cfg.EmbedColors.Warning = envInt("EMBED_COLOR_WARNING", cfg.EmbedColors.Warning)
	cfg.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.EmbedColors.Error)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
