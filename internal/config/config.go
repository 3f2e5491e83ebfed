package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Forecast  ForecastConfig  `mapstructure:"forecast" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains PostgreSQL settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=525600,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// LLMConfig contains settings of the journal analyzer.
type LLMConfig struct {
	GeminiAPIKey       string        `mapstructure:"gemini_api_key" validate:"required"`
	ModelName          string        `mapstructure:"model_name" validate:"required"`
	PromptTemplatePath string        `mapstructure:"prompt_template_path"`
	MaxRetries         int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay          time.Duration `mapstructure:"base_delay" validate:"gt=0"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount   int           `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize     int           `mapstructure:"queue_size" validate:"gt=0"`
	StuckTaskAge  time.Duration `mapstructure:"stuck_task_age" validate:"gt=0"`
	SweepSchedule string        `mapstructure:"sweep_schedule" validate:"required"`
}

// CacheConfig contains Redis settings. An empty RedisURL disables caching.
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url" validate:"omitempty,url"`
	ForecastTTL time.Duration `mapstructure:"forecast_ttl" validate:"gte=0"`
}

// RateLimitConfig contains per-user request limits.
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"gt=0"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	CleanupSchedule   string        `mapstructure:"cleanup_schedule" validate:"required"`
}

// SchedulerConfig overrides the spaced-repetition constants.
type SchedulerConfig struct {
	MinEaseFactor      float64 `mapstructure:"min_ease_factor" validate:"gt=1"`
	GraduatingInterval float64 `mapstructure:"graduating_interval" validate:"gte=1"`
	DueCardsLimit      int     `mapstructure:"due_cards_limit" validate:"gt=0,lte=500"`
}

// ForecastConfig bounds proficiency forecasts.
type ForecastConfig struct {
	MaxHorizonDays     float64 `mapstructure:"max_horizon_days" validate:"gt=0,lte=3650"`
	DefaultHorizonDays float64 `mapstructure:"default_horizon_days" validate:"gt=0,ltefield=MaxHorizonDays"`
}
