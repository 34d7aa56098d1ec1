package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg holds the configuration loaded at startup.
var Cfg *Config

// Config mirrors the layout of config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Contest  ContestConfig  `mapstructure:"contest"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Mode        string          `mapstructure:"mode"`
	Address     string          `mapstructure:"address"`
	FrontendURL string          `mapstructure:"frontendUrl"`
	Cors        CorsConfig      `mapstructure:"cors"`
	RateLimit   RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig bounds requests per client IP across the whole API.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CorsConfig holds the CORS settings.
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig holds the relational store and cache settings.
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds the Redis settings. An empty address disables Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwtSecret"`
	TokenTTL          time.Duration `mapstructure:"tokenTTL"`
	Issuer            string        `mapstructure:"issuer"`
	LoginMaxAttempts  int           `mapstructure:"loginMaxAttempts"`
	LoginAttemptsSpan time.Duration `mapstructure:"loginAttemptsSpan"`
}

type AdminConfig struct {
	Emails []string `mapstructure:"emails"`
}

// ContestConfig holds the contest rules that operators may tune.
type ContestConfig struct {
	RequirePayment bool `mapstructure:"requirePayment"`
	MaxRound       int  `mapstructure:"maxRound"`
	MinYear        int  `mapstructure:"minYear"`
}

type PaymentsConfig struct {
	StripeSecretKey     string `mapstructure:"stripeSecretKey"`
	StripeWebhookSecret string `mapstructure:"stripeWebhookSecret"`
	Currency            string `mapstructure:"currency"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.frontendUrl", "http://localhost:5173")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("server.rateLimit.requests", 100)
	v.SetDefault("server.rateLimit.window", 15*time.Minute)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "contest.db?_busy_timeout=5000&_txlock=immediate")
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", 7*24*time.Hour)
	v.SetDefault("auth.issuer", "go2motion")
	v.SetDefault("auth.loginMaxAttempts", 10)
	v.SetDefault("auth.loginAttemptsSpan", 15*time.Minute)

	v.SetDefault("admin.emails", []string{})

	v.SetDefault("contest.requirePayment", false)
	v.SetDefault("contest.maxRound", 6)
	v.SetDefault("contest.minYear", 2020)

	v.SetDefault("payments.stripeSecretKey", "")
	v.SetDefault("payments.stripeWebhookSecret", "")
	v.SetDefault("payments.currency", "eur")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads config.yaml from ./config or the working directory, then applies
// environment overrides (SERVER_ADDRESS, DATABASE_DSN, ...). A missing file is not an error.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Bare names kept for compatibility with existing deployments.
	_ = v.BindEnv("admin.emails", "ADMIN_EMAILS", "ADMIN_EMAILS")
	_ = v.BindEnv("auth.jwtSecret", "AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("payments.stripeSecretKey", "PAYMENTS_STRIPESECRETKEY", "STRIPE_SECRET_KEY")
	_ = v.BindEnv("payments.stripeWebhookSecret", "PAYMENTS_STRIPEWEBHOOKSECRET", "STRIPE_WEBHOOK_SECRET")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

// ParseEmailList normalizes an allow-list: entries may themselves be comma separated,
// they are trimmed and lower-cased, and empty entries are dropped.
func ParseEmailList(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			email := strings.ToLower(strings.TrimSpace(part))
			if email != "" {
				out = append(out, email)
			}
		}
	}
	return out
}
