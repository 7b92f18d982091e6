package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string
	Env  string

	// DBDriver is "postgres" or "sqlite". Sqlite is the dev/test default so the
	// server runs with zero setup; production points DB_* at Postgres.
	DBDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SqlitePath string

	AbsenceNotify         bool
	AbsenceNotifyInterval time.Duration
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// JWTSecret is the shared secret verifying bearer tokens issued by the
// external auth service. Handlers read it per request so tests can swap it
// with t.Setenv.
func JWTSecret() []byte {
	return []byte(get("JWT_SECRET", "dev-secret-change-me"))
}

// MediaDir is the directory uploaded report media is written to.
func MediaDir() string {
	return get("MEDIA_DIR", "media")
}

// MediaBaseURL prefixes the public URLs returned for uploaded media.
func MediaBaseURL() string {
	return get("MEDIA_BASE_URL", "/media")
}

func Load() *Config {
	_ = godotenv.Load()

	interval := 5 * time.Minute
	if raw := os.Getenv("ABSENCE_NOTIFY_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			interval = d
		}
	}

	return &Config{
		Addr: get("ADDR", ":8080"),
		Env:  get("APP_ENV", "dev"),

		DBDriver: get("DB_DRIVER", "sqlite"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "lprds"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		SqlitePath: get("SQLITE_PATH", "lprds.db"),

		AbsenceNotify:         os.Getenv("ABSENCE_NOTIFY") == "1",
		AbsenceNotifyInterval: interval,
	}
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) SqliteDSN() string {
	return c.SqlitePath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}
