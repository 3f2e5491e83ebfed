package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/phrazzld/quill-api/internal/domain/forecast"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "QUILL"

// Options controls where Load looks for configuration files.
type Options struct {
	// ConfigPaths are searched for config.yaml. Defaults to ".".
	ConfigPaths []string
	// DotEnvPath is loaded into the environment when it exists.
	// Defaults to ".env"; set to "-" to skip.
	DotEnvPath string
}

// Load reads configuration from the working directory and the environment.
func Load() (*Config, error) {
	return LoadWithOptions(Options{})
}

// LoadWithOptions reads configuration using opts. Environment variables take
// precedence over config.yaml, which takes precedence over defaults.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.DotEnvPath == "" {
		opts.DotEnvPath = ".env"
	}
	if len(opts.ConfigPaths) == 0 {
		opts.ConfigPaths = []string{"."}
	}

	if opts.DotEnvPath != "-" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(opts.DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", opts.DotEnvPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range opts.ConfigPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal, including keys that have no meaningful default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.base_delay", 2*time.Second)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age", 30*time.Minute)
	v.SetDefault("task.sweep_schedule", "@every 5m")

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.forecast_ttl", time.Hour)

	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_timeout", 30*time.Minute)
	v.SetDefault("rate_limit.cleanup_schedule", "@every 10m")

	v.SetDefault("scheduler.min_ease_factor", 1.3)
	v.SetDefault("scheduler.graduating_interval", 6.0)
	v.SetDefault("scheduler.due_cards_limit", 50)

	v.SetDefault("forecast.max_horizon_days", forecast.DefaultMaxHorizonDays)
	v.SetDefault("forecast.default_horizon_days", 30.0)
}
