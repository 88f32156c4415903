package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hiking-backend/utils"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port           string
	GinMode        string
	DBDriver       string
	SQLitePath     string
	JWTSecret      []byte
	JWTTTL         time.Duration
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	SeedData       bool
	SMTP           utils.SMTPSettings
}

// Load reads .env (optional) and the environment.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	s := Settings{
		Port:        utils.EnvOrDefault("PORT", "8080"),
		GinMode:     utils.EnvOrDefault("GIN_MODE", "debug"),
		DBDriver:    strings.ToLower(utils.EnvOrDefault("DB_DRIVER", "mysql")),
		SQLitePath:  utils.EnvOrDefault("SQLITE_PATH", "hiking.db"),
		CORSOrigins: parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		SeedData:    strings.EqualFold(utils.EnvOrDefault("SEED_DATA", "true"), "true"),
		SMTP: utils.SMTPSettings{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			FromName: utils.EnvOrDefault("SMTP_FROM_NAME", "Trail Tours"),
		},
	}

	switch s.DBDriver {
	case "mysql", "sqlite":
	default:
		return s, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		if s.GinMode == "release" {
			return s, fmt.Errorf("JWT_SECRET must be set in release mode")
		}
		log.Println("⚠️  JWT_SECRET not set; using a random per-process secret (tokens die on restart)")
		generated, err := utils.GenerateSecureToken(32)
		if err != nil {
			return s, fmt.Errorf("cannot generate JWT secret: %w", err)
		}
		secret = generated
	}
	s.JWTSecret = []byte(secret)

	ttlHours, err := strconv.Atoi(utils.EnvOrDefault("JWT_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return s, fmt.Errorf("invalid JWT_TTL_HOURS")
	}
	s.JWTTTL = time.Duration(ttlHours) * time.Hour

	rps, err := strconv.ParseFloat(utils.EnvOrDefault("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return s, fmt.Errorf("invalid RATE_LIMIT_RPS")
	}
	s.RateLimitRPS = rps

	burst, err := strconv.Atoi(utils.EnvOrDefault("RATE_LIMIT_BURST", "10"))
	if err != nil || burst <= 0 {
		return s, fmt.Errorf("invalid RATE_LIMIT_BURST")
	}
	s.RateLimitBurst = burst

	return s, nil
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
