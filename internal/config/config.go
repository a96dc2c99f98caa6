package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort     int
	RequestTimeout time.Duration
	CORSOrigins    []string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LineChannelID string
	LineVerifyURL string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "menushare"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort:     EnvIntDefault("SERVER_PORT", 8080),
		RequestTimeout: EnvDurationDefault("REQUEST_TIMEOUT", 5*time.Second),
		CORSOrigins:    CSV(EnvDefault("CORS_ORIGINS", "*")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "menus"),

		LineChannelID: os.Getenv("LINE_CHANNEL_ID"),
		LineVerifyURL: EnvDefault("LINE_VERIFY_URL", "https://api.line.me/oauth2/v2.1/verify"),
	}
}

// Validate reports every setting the server cannot run without.
func (c Config) Validate() error {
	return errors.Join(
		Required("DATABASE_URL", c.DatabaseURL),
		RequiredBytes("JWT_SECRET", c.JWTAccessSecret),
		RequiredBytes("JWT_REFRESH_SECRET", c.JWTRefreshSecret),
		Distinct("JWT_SECRET", "JWT_REFRESH_SECRET", c.JWTAccessSecret, c.JWTRefreshSecret),
	)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
