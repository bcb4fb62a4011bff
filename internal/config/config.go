package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env              string
	Port             string
	DatabaseURL      string
	RedisURL         string
	MinSharePrice    int64
	RatingCacheTTL   time.Duration
	RatingRecalcCron string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	minSharePrice := viper.GetInt64("MIN_SHARE_PRICE")
	if minSharePrice <= 0 {
		minSharePrice = 5000
	}

	cacheTTL := viper.GetDuration("RATING_CACHE_TTL")
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	recalcCron := viper.GetString("RATING_RECALC_CRON")
	if recalcCron == "" {
		recalcCron = "0 3 * * *"
	}

	return &Config{
		Env:              env,
		Port:             port,
		DatabaseURL:      viper.GetString("DATABASE_URL"),
		RedisURL:         viper.GetString("REDIS_URL"),
		MinSharePrice:    minSharePrice,
		RatingCacheTTL:   cacheTTL,
		RatingRecalcCron: recalcCron,
	}, nil
}
