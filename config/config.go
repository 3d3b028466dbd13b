package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config is resolved once at startup and passed to whoever needs it; nothing
// reads credentials from the environment after Load returns.
type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string
	CORSOrigin  string
}

// Load reads .env (if present) and collects the process configuration.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getenv("PORT", "4000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		CORSOrigin:  getenv("CORS_ORIGIN", "http://localhost:3000"),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
