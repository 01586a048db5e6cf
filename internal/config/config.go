package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port         string
	JWTSecret    string
	CookieSecure bool

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// Load reads .env (if present) and the UNBENCHED_* / DB_* variables.
// DATABASE_URL, when set, wins over the individual DB_* parts.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieSecure: os.Getenv("COOKIE_SECURE") == "1",
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "unbenched"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// DatabaseURL returns the Postgres connection URL.
func (c Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
