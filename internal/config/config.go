package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config is the full service configuration, parsed from the environment at
// startup. SMTP settings live in the mailer package.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
	OTP    OTPConfig

	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"HTTP_HOST"             envDefault:"0.0.0.0"`
	Port            int           `env:"HTTP_PORT"             envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"taskhub"`
}

// TokenConfig holds JWT signing settings. Access and password reset tokens
// are signed with distinct secrets so one class of token can never be
// presented as the other.
type TokenConfig struct {
	Secret                      string        `env:"TOKEN_SECRET,required"`
	PasswordResetSecret         string        `env:"PASSWORD_RESET_TOKEN_SECRET,required"`
	Issuer                      string        `env:"TOKEN_ISSUER"                   envDefault:"taskhub"`
	AccessTokenExpiresIn        time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"        envDefault:"24h"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN" envDefault:"1h"`
}

// OTPConfig holds email verification code settings.
type OTPConfig struct {
	ExpiresIn time.Duration `env:"OTP_EXPIRES_IN" envDefault:"10m"`
}

// Load parses the configuration from environment variables.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}
