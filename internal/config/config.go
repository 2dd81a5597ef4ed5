package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort           string
	DatabasePath       string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	AdminEmail         string
	TokenTTL           time.Duration
	SeedOnStart        bool
	QueuePollInterval  time.Duration
	IntegrityInterval  time.Duration
	PublicRateLimitRPS int
	AuthRateLimitRPS   int
	LogLevel           string
	IdempotencyTTL     time.Duration
	CardFailureRate    float64
	CardChargeLatency  time.Duration
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "PANEL_PORT")
	bindEnv(v, "database_path", "DATABASE_PATH", "PANEL_DATABASE_PATH")
	bindEnv(v, "redis_url", "REDIS_URL", "PANEL_REDIS_URL")
	bindEnv(v, "jwt_secret", "JWT_SECRET", "PANEL_JWT_SECRET")
	bindEnv(v, "jwt_issuer", "JWT_ISSUER", "PANEL_JWT_ISSUER")
	bindEnv(v, "jwt_audience", "JWT_AUDIENCE", "PANEL_JWT_AUDIENCE")
	bindEnv(v, "admin_email", "ADMIN_EMAIL", "PANEL_ADMIN_EMAIL")
	bindEnv(v, "token_ttl", "TOKEN_TTL", "PANEL_TOKEN_TTL")
	bindEnv(v, "seed_on_start", "SEED_ON_START", "PANEL_SEED_ON_START")
	bindEnv(v, "queue_poll_interval", "QUEUE_POLL_INTERVAL", "PANEL_QUEUE_POLL_INTERVAL")
	bindEnv(v, "integrity_interval", "INTEGRITY_INTERVAL", "PANEL_INTEGRITY_INTERVAL")
	bindEnv(v, "public_rate_limit_rps", "PUBLIC_RATE_LIMIT_RPS", "PANEL_PUBLIC_RATE_LIMIT_RPS")
	bindEnv(v, "auth_rate_limit_rps", "AUTH_RATE_LIMIT_RPS", "PANEL_AUTH_RATE_LIMIT_RPS")
	bindEnv(v, "log_level", "LOG_LEVEL", "PANEL_LOG_LEVEL")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL", "PANEL_IDEMPOTENCY_TTL")
	bindEnv(v, "card_failure_rate", "CARD_FAILURE_RATE", "PANEL_CARD_FAILURE_RATE")
	bindEnv(v, "card_charge_latency", "CARD_CHARGE_LATENCY", "PANEL_CARD_CHARGE_LATENCY")

	v.SetDefault("port", "8080")
	v.SetDefault("database_path", "panel.db")
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "socialboost-panel")
	v.SetDefault("jwt_audience", "panel-api")
	v.SetDefault("admin_email", "admin@example.com")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("seed_on_start", true)
	v.SetDefault("queue_poll_interval", "15s")
	v.SetDefault("integrity_interval", "1h")
	v.SetDefault("public_rate_limit_rps", 10)
	v.SetDefault("auth_rate_limit_rps", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("card_failure_rate", 0.05)
	v.SetDefault("card_charge_latency", "1500ms")

	tokenTTL, err := time.ParseDuration(v.GetString("token_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	pollInterval, err := time.ParseDuration(v.GetString("queue_poll_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_POLL_INTERVAL: %w", err)
	}
	integrityInterval, err := time.ParseDuration(v.GetString("integrity_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid INTEGRITY_INTERVAL: %w", err)
	}
	ttl, err := time.ParseDuration(v.GetString("idempotency_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	chargeLatency, err := time.ParseDuration(v.GetString("card_charge_latency"))
	if err != nil {
		return nil, fmt.Errorf("invalid CARD_CHARGE_LATENCY: %w", err)
	}

	cfg := &Config{
		HTTPPort:           v.GetString("port"),
		DatabasePath:       v.GetString("database_path"),
		RedisURL:           v.GetString("redis_url"),
		JWTSecret:          v.GetString("jwt_secret"),
		JWTIssuer:          v.GetString("jwt_issuer"),
		JWTAudience:        v.GetString("jwt_audience"),
		AdminEmail:         strings.ToLower(v.GetString("admin_email")),
		TokenTTL:           tokenTTL,
		SeedOnStart:        v.GetBool("seed_on_start"),
		QueuePollInterval:  pollInterval,
		IntegrityInterval:  integrityInterval,
		PublicRateLimitRPS: max(v.GetInt("public_rate_limit_rps"), 1),
		AuthRateLimitRPS:   max(v.GetInt("auth_rate_limit_rps"), 1),
		LogLevel:           v.GetString("log_level"),
		IdempotencyTTL:     ttl,
		CardFailureRate:    v.GetFloat64("card_failure_rate"),
		CardChargeLatency:  chargeLatency,
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if strings.TrimSpace(cfg.JWTIssuer) == "" {
		return nil, fmt.Errorf("JWT_ISSUER is required")
	}
	if strings.TrimSpace(cfg.JWTAudience) == "" {
		return nil, fmt.Errorf("JWT_AUDIENCE is required")
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return nil, fmt.Errorf("DATABASE_PATH is required")
	}
	if cfg.CardFailureRate < 0 || cfg.CardFailureRate > 1 {
		return nil, fmt.Errorf("CARD_FAILURE_RATE must be between 0 and 1")
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
