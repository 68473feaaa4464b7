package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,       default=8080"`
	Env      string `env:"ENV,        default=development"`
	LogLevel string `env:"LOG_LEVEL,  default=info"`
	BaseURL  string `env:"DOMAIN_BASE_URL, default=http://localhost:8080"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type AuthConfig struct {
	SecretKey                string `env:"SECRET_KEY"`
	Algorithm                string `env:"ALGORITHM, default=HS256"`
	AccessTokenExpireHours   int    `env:"ACCESS_TOKEN_EXPIRE_HOURS,   default=2"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=0"`
	VerifyTokenExpireMinutes int    `env:"VERIFY_TOKEN_EXPIRE_MINUTES, default=15"`
	ResetOTPExpireMinutes    int    `env:"PASSWORD_RESET_OTP_EXPIRE_MINUTES, default=15"`
	MaxAttempts              int    `env:"AUTH_MAX_ATTEMPTS,           default=10"`
	AttemptWindowMinutes     int    `env:"AUTH_ATTEMPT_WINDOW_MINUTES, default=15"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=claritykit"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"EMAIL_SMTP_SERVER"`
	Port     string `env:"EMAIL_SMTP_PORT, default=587"`
	Sender   string `env:"EMAIL_SENDER_ADDRESS"`
	Password string `env:"EMAIL_SENDER_PASSWORD"`
}

// AccessTokenTTL is the combined hours+minutes lifetime of login tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireHours)*time.Hour +
		time.Duration(a.AccessTokenExpireMinutes)*time.Minute
}

// VerifyTokenTTL is the lifetime of emailed verification-link tokens.
func (a AuthConfig) VerifyTokenTTL() time.Duration {
	return time.Duration(a.VerifyTokenExpireMinutes) * time.Minute
}

// ResetOTPTTL is the lifetime of password-reset OTP codes.
func (a AuthConfig) ResetOTPTTL() time.Duration {
	return time.Duration(a.ResetOTPExpireMinutes) * time.Minute
}

// AttemptWindow is the sliding window used by the login/OTP throttle.
func (a AuthConfig) AttemptWindow() time.Duration {
	return time.Duration(a.AttemptWindowMinutes) * time.Minute
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
