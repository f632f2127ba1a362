package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                   string
	Port                  string
	DatabaseURL           string
	RedisURL              string
	Auth0Domain           string
	Auth0ClientID         string
	Auth0ClientSecret     string
	AuthJWTPublicKey      string // PEM used to verify inbound bearer tokens
	AuthAudience          string
	AuthIssuer            string
	InternalJWTPrivateKey string // PEM used to sign exchanged household tokens
	InternalJWTPublicKey  string
	FrontendURLEndsWith   string
	UserInfoCacheTTL      time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "3000"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	cacheTTL := viper.GetDuration("USERINFO_CACHE_TTL")
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Config{
		Env:                   env,
		Port:                  port,
		DatabaseURL:           viper.GetString("DATABASE_URL"),
		RedisURL:              viper.GetString("REDIS_URL"),
		Auth0Domain:           viper.GetString("AUTH0_DOMAIN"),
		Auth0ClientID:         viper.GetString("AUTH0_CLIENT_ID"),
		Auth0ClientSecret:     viper.GetString("AUTH0_CLIENT_SECRET"),
		AuthJWTPublicKey:      viper.GetString("AUTH_JWT_PUBLIC_KEY"),
		AuthAudience:          viper.GetString("AUTH_AUDIENCE"),
		AuthIssuer:            viper.GetString("AUTH_ISSUER"),
		InternalJWTPrivateKey: viper.GetString("INTERNAL_JWT_PRIVATE_KEY"),
		InternalJWTPublicKey:  viper.GetString("INTERNAL_JWT_PUBLIC_KEY"),
		FrontendURLEndsWith:   viper.GetString("FRONTEND_URL_ENDS_WITH"),
		UserInfoCacheTTL:      cacheTTL,
	}, nil
}
