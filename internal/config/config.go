package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Auth     Auth     `mapstructure:"auth"`
	Push     Push     `mapstructure:"push"`
	Notifier Notifier `mapstructure:"notifier"`
	Logger   Logger   `mapstructure:"logger"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Redis holds the configuration for the optional stats cache. An empty URL
// disables caching entirely.
type Redis struct {
	URL          string `mapstructure:"url"`
	StatsTTLSecs int    `mapstructure:"stats_ttl_secs"`
}

// Auth holds the configuration for token issuing and admin access.
type Auth struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	TokenTTLHours int      `mapstructure:"token_ttl_hours"`
	AdminPhones   []string `mapstructure:"admin_phones"`
}

// Push holds the configuration for the push-notification gateway client.
type Push struct {
	GatewayURL     string  `mapstructure:"gateway_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Notifier holds the configuration for the new-trade notifier daemon.
type Notifier struct {
	PollIntervalSecs int    `mapstructure:"poll_interval_secs"`
	ExpirySweepCron  string `mapstructure:"expiry_sweep_cron"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("auth.token_ttl_hours", 720)
	viper.SetDefault("redis.stats_ttl_secs", 30)
	viper.SetDefault("push.gateway_url", "https://exp.host/--/api/v2/push/send")
	viper.SetDefault("push.rate_limit", 10)      // requests per second
	viper.SetDefault("push.rate_limit_burst", 5) // burst size
	viper.SetDefault("notifier.poll_interval_secs", 15)
	viper.SetDefault("notifier.expiry_sweep_cron", "30 3 * * *")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
