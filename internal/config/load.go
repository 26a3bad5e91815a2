package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// SCRY_TUTOR_SERVER_PORT for server.port.
const EnvPrefix = "SCRY_TUTOR"

// ErrPostgresURLRequired is returned when the postgres backend is selected
// without a database URL.
var ErrPostgresURLRequired = errors.New("database.url is required for the postgres backend")

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 10,

	"store.backend":      BackendMemory,
	"store.sessions_key": "scry_tutor:sessions",
	"store.users_key":    "scry_tutor:users",
	"store.sqlite_path":  "",
	"store.redis_url":    "",

	"database.url":                       "",
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,

	"auth.jwt_secret":             "",
	"auth.token_lifetime_minutes": 1440,
	"auth.bcrypt_cost":            10,

	"llm.gemini_api_key":             "",
	"llm.model_name":                 "gemini-3-pro-preview",
	"llm.analysis_thinking_budget":   16000,
	"llm.evaluation_thinking_budget": 2048,
	"llm.request_timeout_seconds":    120,
	"llm.max_retries":                0,
	"llm.base_delay_seconds":         1.0,
	"llm.max_delay_seconds":          30.0,

	"workspace.idle_timeout_minutes": 60,
}

// Load reads configuration from an optional config.yaml in the working
// directory and from SCRY_TUTOR_* environment variables, which take
// precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-section rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Store.Backend == BackendPostgres && cfg.Database.URL == "" {
		return fmt.Errorf("config validation failed: %w", ErrPostgresURLRequired)
	}
	return nil
}
