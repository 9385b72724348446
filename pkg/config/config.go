// Package config loads service configuration from .env files, an optional
// YAML file and ROTATION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	Database DatabaseConfig   `mapstructure:"db"`
	Redis    RedisConfig      `mapstructure:"redis"`
	Auth     AuthConfig       `mapstructure:"auth"`
	Log      LogConfig        `mapstructure:"log"`
	Rotation scheduler.Config `mapstructure:"rotation"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
	Metrics bool   `mapstructure:"metrics"`

	// CORSOrigins lists browser origins allowed to call the API; "*" allows any
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects Postgres when URL is set, SQLite at Path otherwise
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RedisConfig backs the request rate limiter
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds signing secrets and the seeded admin account
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	MasterSecret  string        `mapstructure:"master_secret"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
}

// LogConfig logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacy variable names still honoured
var legacyEnv = map[string]string{
	"db.url":              "DATABASE_URL",
	"db.path":             "DATA_PATH",
	"auth.jwt_secret":     "JWT_SECRET",
	"auth.master_secret":  "API_MASTER_SECRET",
	"auth.admin_username": "ADMIN_USERNAME",
	"auth.admin_password": "ADMIN_PASSWORD",
	"server.port":         "PORT",
	"server.gin_mode":     "GIN_MODE",
}

// LoadDotEnv loads the first .env found in the working directory or its parents
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads configuration. Precedence: env > config file > defaults.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	v := viper.New()

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("db.url", "")
	v.SetDefault("db.path", "rotation.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.master_secret", "")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "admin123")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.bcrypt_cost", 14)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	def := scheduler.DefaultConfig()
	v.SetDefault("rotation.chairmen_list", def.ChairmenList)
	v.SetDefault("rotation.prayers_list", def.PrayersList)
	v.SetDefault("rotation.talk_list", def.TalkList)
	v.SetDefault("rotation.paired_lists", def.PairedLists)
	v.SetDefault("rotation.max_paired_appearances", def.MaxPairedAppearances)
	w := def.Weights
	for key, val := range map[string]int{
		"fresh":               w.Fresh,
		"alternation":         w.Alternation,
		"spacing_per_week":    w.SpacingPerWeek,
		"spacing_cap":         w.SpacingCap,
		"low_spacing_weeks":   w.LowSpacingWeeks,
		"low_spacing_penalty": w.LowSpacingPenalty,
		"variety":             w.Variety,
		"new_partner":         w.NewPartner,
		"repeat_partner":      w.RepeatPartner,
		"historical_load":     w.HistoricalLoad,
		"rotation":            w.Rotation,
	} {
		v.SetDefault("rotation.weights."+key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROTATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "ROTATION_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot run without
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if len(c.Auth.MasterSecret) < 16 {
		return fmt.Errorf("config: auth.master_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.gin_mode must be debug, release or test")
	}
	if c.Rotation.ChairmenList == "" || c.Rotation.PrayersList == "" {
		return fmt.Errorf("config: rotation.chairmen_list and rotation.prayers_list are required")
	}
	return nil
}
