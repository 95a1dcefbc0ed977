package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Study    StudyConfig    `mapstructure:"study" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown of the HTTP server.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes is the lifetime of tokens minted by the token command.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
}

// StudyConfig contains the scheduling settings.
type StudyConfig struct {
	// Timezone is the IANA name of the location whose midnight separates study days.
	Timezone string `mapstructure:"timezone" validate:"required"`
	// MasteryIntervalDays is the interval above which a card counts as mastered.
	MasteryIntervalDays int `mapstructure:"mastery_interval_days" validate:"gte=1"`
	// MaxIntervalDays caps how far ahead a review can be scheduled.
	MaxIntervalDays int `mapstructure:"max_interval_days" validate:"gte=6,lte=100000"`
	// SessionTTLMinutes is how long cards answered in a session stay excluded
	// from next-card selection.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" validate:"gte=1"`
}

// RedisConfig configures the optional session cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
