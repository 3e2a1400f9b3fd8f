package util

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string        `validate:"required,number"`
	StaticDir     string        `validate:"required"`
	TokenKey      string        `validate:"required,len=32"`
	TokenDuration time.Duration `validate:"required"`
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	duration, err := time.ParseDuration(getEnv("TOKEN_DURATION", "24h"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Port:          getEnv("PORT", "8080"),
		StaticDir:     getEnv("STATIC_DIR", "./static"),
		TokenKey:      os.Getenv("TOKEN_SYMMETRIC_KEY"),
		TokenDuration: duration,
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
