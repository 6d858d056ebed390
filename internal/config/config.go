package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without zoneinfo

	"keimadura-pos/internal/apperr"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Debug      bool
	Port       string
	BaseURL    string
	DBDriver   string
	DBDSN      string
	DBAttempts int

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string
	Location    *time.Location

	AdminUsername string
	AdminPassword string

	GeminiAPIKey string
	GeminiModel  string
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup, so tests don't touch the real environment.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Env:           get("APP_ENV", "development"),
		Port:          get("PORT", "8080"),
		DBDriver:      get("DB_DRIVER", "mysql"),
		DBDSN:         get("DB_DSN", ""),
		JWTSecret:     get("JWT_SECRET", ""),
		AdminUsername: get("ADMIN_USERNAME", "Keimadura"),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		GeminiAPIKey:  get("GEMINI_API_KEY", ""),
		GeminiModel:   get("GEMINI_MODEL", "gemini-2.0-flash-001"),
	}
	cfg.BaseURL = get("BASE_URL", "http://localhost:"+cfg.Port)

	if cfg.DBDSN == "" {
		return nil, apperr.Validation("DB_DSN is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, apperr.Validation("JWT_SECRET is not set")
	}
	switch cfg.DBDriver {
	case "mysql", "sqlite":
	default:
		return nil, apperr.Validation(fmt.Sprintf("DB_DRIVER %q is not supported", cfg.DBDriver))
	}

	debug, err := strconv.ParseBool(get("APP_DEBUG", strconv.FormatBool(cfg.Env != "production")))
	if err != nil {
		return nil, apperr.Validation("APP_DEBUG must be a boolean")
	}
	cfg.Debug = debug

	cfg.DBAttempts, err = strconv.Atoi(get("DB_CONNECT_ATTEMPTS", "5"))
	if err != nil || cfg.DBAttempts < 1 {
		return nil, apperr.Validation("DB_CONNECT_ATTEMPTS must be a positive integer")
	}

	cfg.JWTTTL, err = time.ParseDuration(get("JWT_TTL", "24h"))
	if err != nil || cfg.JWTTTL <= 0 {
		return nil, apperr.Validation("JWT_TTL must be a positive duration")
	}

	cfg.Location, err = time.LoadLocation(get("APP_TIMEZONE", "Africa/Luanda"))
	if err != nil {
		return nil, apperr.Validation("APP_TIMEZONE is not a known time zone")
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}
