package config

import (
	"testing"
	"time"

	"keimadura-pos/internal/apperr"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DB_DSN":     "root@tcp(localhost:3306)/keimadura_db?parseTime=true",
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "mysql" || cfg.DBAttempts != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}
	if cfg.Location.String() != "Africa/Luanda" {
		t.Errorf("Location = %v", cfg.Location)
	}
	if !cfg.Debug || cfg.IsProduction() {
		t.Errorf("development should default to debug")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromLookupProductionHidesDebug(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"APP_ENV":      "production",
		"DB_DSN":       "dsn",
		"JWT_SECRET":   "secret",
		"CORS_ORIGINS": "https://pos.keimadura.ao, https://admin.keimadura.ao",
	}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if cfg.Debug {
		t.Error("production should default debug off")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.keimadura.ao" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromLookupRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing dsn":    {"JWT_SECRET": "s"},
		"missing secret": {"DB_DSN": "d"},
		"bad driver":     {"DB_DSN": "d", "JWT_SECRET": "s", "DB_DRIVER": "oracle"},
		"bad attempts":   {"DB_DSN": "d", "JWT_SECRET": "s", "DB_CONNECT_ATTEMPTS": "0"},
		"bad ttl":        {"DB_DSN": "d", "JWT_SECRET": "s", "JWT_TTL": "soon"},
		"bad zone":       {"DB_DSN": "d", "JWT_SECRET": "s", "APP_TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(env))
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}
