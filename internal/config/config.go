package config

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Store     StoreConfig     `mapstructure:"store"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Workspace WorkspaceConfig `mapstructure:"workspace" validate:"required"`
}

// ServerConfig contains HTTP server and logging settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// StoreConfig selects the key-value backend and the keys the session and
// user collections live under.
type StoreConfig struct {
	Backend     string `mapstructure:"backend"      validate:"required,oneof=memory postgres sqlite redis"`
	SessionsKey string `mapstructure:"sessions_key" validate:"required"`
	UsersKey    string `mapstructure:"users_key"    validate:"required"`
	SQLitePath  string `mapstructure:"sqlite_path"  validate:"required_if=Backend sqlite"`
	RedisURL    string `mapstructure:"redis_url"    validate:"required_if=Backend redis"`
}

// DatabaseConfig holds Postgres connection settings. URL is required only
// for the postgres backend.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"           validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"           validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// LLMConfig contains Gemini settings.
type LLMConfig struct {
	GeminiAPIKey             string  `mapstructure:"gemini_api_key"             validate:"required"`
	ModelName                string  `mapstructure:"model_name"                 validate:"required"`
	AnalysisThinkingBudget   int     `mapstructure:"analysis_thinking_budget"   validate:"gte=0"`
	EvaluationThinkingBudget int     `mapstructure:"evaluation_thinking_budget" validate:"gte=0"`
	RequestTimeoutSeconds    int     `mapstructure:"request_timeout_seconds"    validate:"gt=0"`
	MaxRetries               int     `mapstructure:"max_retries"                validate:"gte=0,lte=5"`
	BaseDelaySeconds         float64 `mapstructure:"base_delay_seconds"        validate:"gte=0"`
	MaxDelaySeconds          float64 `mapstructure:"max_delay_seconds"         validate:"gte=0"`
}

// WorkspaceConfig controls the per-user live workspaces.
type WorkspaceConfig struct {
	IdleTimeoutMinutes int `mapstructure:"idle_timeout_minutes" validate:"gt=0"`
}
