package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Environment string         `mapstructure:"environment" validate:"required,oneof=development test production"`
	Server      ServerConfig   `mapstructure:"server"      validate:"required"`
	Database    DatabaseConfig `mapstructure:"database"    validate:"required"`
	Auth        AuthConfig     `mapstructure:"auth"        validate:"required"`
	Identity    IdentityConfig `mapstructure:"identity"`
	LLM         LLMConfig      `mapstructure:"llm"`
	Tasks       TasksConfig    `mapstructure:"tasks"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	LogFormat              string `mapstructure:"log_format"               validate:"required,oneof=json console"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL selects the driver: postgres:// and postgresql:// use pgx,
// sqlite:// and file: use SQLite.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=1440"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
	// InsecureDevLogin lets local-mode login skip the password check.
	// Never honored when an identity provider is configured or in production.
	InsecureDevLogin bool `mapstructure:"insecure_dev_login"`
}

// IdentityConfig configures the optional remote identity provider.
// Leaving ProviderURL empty selects local identity mode.
type IdentityConfig struct {
	ProviderURL       string  `mapstructure:"provider_url"        validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"             validate:"required_with=ProviderURL"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"     validate:"gte=1"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
}

// Enabled reports whether a remote identity provider is configured.
func (c IdentityConfig) Enabled() bool {
	return c.ProviderURL != "" && c.APIKey != ""
}

// LLMConfig contains all LLM integration related settings.
// An empty GeminiAPIKey disables summarization; requests then receive
// a structured error instead of a summary.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"           validate:"required"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"      validate:"gte=1"`
	MaxRetries         int    `mapstructure:"max_retries"          validate:"gte=0,lte=5"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds"  validate:"gte=0"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
}

// TasksConfig bounds task listing.
type TasksConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"required,gt=0,ltefield=MaxPageSize"`
	MaxPageSize     int `mapstructure:"max_page_size"     validate:"required,gt=0,lte=1000"`
}
