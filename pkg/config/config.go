package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config collects everything the serve command and the examples need to run
// the dashboard component.
type Config struct {
	Server struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		BasePath string `mapstructure:"base_path"`
	} `mapstructure:"server"`
	API struct {
		BaseURL   string `mapstructure:"base_url"`
		UserAgent string `mapstructure:"user_agent"`
	} `mapstructure:"api"`
	Dashboard struct {
		Locale           string        `mapstructure:"locale"`
		DefaultTimeRange string        `mapstructure:"default_time_range"`
		TopLimit         int           `mapstructure:"top_limit"`
		RecentLimit      int           `mapstructure:"recent_limit"`
		RefreshCooldown  time.Duration `mapstructure:"refresh_cooldown"`
		ChartCacheTTL    time.Duration `mapstructure:"chart_cache_ttl"`
	} `mapstructure:"dashboard"`
	Log struct {
		Level      string `mapstructure:"level"`
		FilePath   string `mapstructure:"file_path"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
}

// Load reads configuration from an optional .env file, environment
// variables prefixed MELODIX_, and an optional YAML file. File values lose
// to environment values. An empty path falls back to melodix.yaml in the
// working directory when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MELODIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register keys
	_ = v.BindEnv("server.host")
	_ = v.BindEnv("server.port")
	_ = v.BindEnv("server.base_path")
	_ = v.BindEnv("api.base_url")
	_ = v.BindEnv("api.user_agent")
	_ = v.BindEnv("dashboard.locale")
	_ = v.BindEnv("dashboard.default_time_range")
	_ = v.BindEnv("dashboard.top_limit")
	_ = v.BindEnv("dashboard.recent_limit")
	_ = v.BindEnv("dashboard.refresh_cooldown")
	_ = v.BindEnv("dashboard.chart_cache_ttl")
	_ = v.BindEnv("log.level")
	_ = v.BindEnv("log.file_path")
	_ = v.BindEnv("log.max_size_mb")
	_ = v.BindEnv("log.max_backups")
	_ = v.BindEnv("log.max_age_days")
	_ = v.BindEnv("metrics.enabled")
	_ = v.BindEnv("metrics.path")

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_path", "/dashboard")
	v.SetDefault("api.base_url", "http://127.0.0.1:5000")
	v.SetDefault("api.user_agent", "melodix-dashboard/1.0")
	v.SetDefault("dashboard.locale", "es")
	v.SetDefault("dashboard.default_time_range", "medium_term")
	v.SetDefault("dashboard.top_limit", 10)
	v.SetDefault("dashboard.recent_limit", 10)
	v.SetDefault("dashboard.refresh_cooldown", 15*time.Second)
	v.SetDefault("dashboard.chart_cache_ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/_metrics")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("melodix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
