package confs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Tokens default to a 65 day lifetime.
const defaultTokenTTLHours = 65 * 24

type Config struct {
	Port      string
	JWTSecret string
	TokenTTL  time.Duration
	RedisAddr string
	RedisDB   int
}

// LoadConfig loads environment variables from a .env file if present.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		// Not an error at runtime; env vars may be set another way
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}
	return nil
}

// GetConfig reads the server configuration from the environment.
// JWT_SECRET is mandatory: issued tokens must stay verifiable across
// restarts, so the key is never generated at boot.
func GetConfig() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	ttlHours := defaultTokenTTLHours
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %q", v)
		}
		ttlHours = parsed
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %q", v)
		}
		redisDB = parsed
	}

	return &Config{
		Port:      port,
		JWTSecret: secret,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisDB:   redisDB,
	}, nil
}
