package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKPILOT"

// keys lists every configuration key so that viper resolves it from the
// environment even when no config file or default mentions it.
var keys = []string{
	"environment",
	"server.port",
	"server.log_level",
	"server.log_format",
	"server.shutdown_timeout_seconds",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"database.conn_max_lifetime_minutes",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.bcrypt_cost",
	"auth.insecure_dev_login",
	"identity.provider_url",
	"identity.api_key",
	"identity.timeout_seconds",
	"identity.requests_per_second",
	"llm.gemini_api_key",
	"llm.model_name",
	"llm.timeout_seconds",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"llm.prompt_template_path",
	"tasks.default_page_size",
	"tasks.max_page_size",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "sqlite://taskpilot.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.token_lifetime_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.insecure_dev_login", false)

	v.SetDefault("identity.timeout_seconds", 10)
	v.SetDefault("identity.requests_per_second", 5)

	v.SetDefault("llm.model_name", "gemini-1.5-flash")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 1)

	v.SetDefault("tasks.default_page_size", 20)
	v.SetDefault("tasks.max_page_size", 100)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file instead of
// searching the working directory. An empty path falls back to the search.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct validation plus the cross-section rules that tags
// cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Auth.InsecureDevLogin {
		if cfg.Environment == "production" {
			return errors.New("config validation failed: auth.insecure_dev_login cannot be enabled in production")
		}
		if cfg.Identity.Enabled() {
			return errors.New("config validation failed: auth.insecure_dev_login cannot be combined with an identity provider")
		}
	}

	return nil
}
