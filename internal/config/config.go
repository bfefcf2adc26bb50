package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds database connection settings.
// Driver selects between a PostgreSQL server and an embedded SQLite file.
type DatabaseConfig struct {
	Driver             string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	SQLitePath         string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig holds document store settings: where files live and how thumbnails are produced.
type StoreConfig struct {
	Backend      string
	Root         string
	TempDir      string
	ThumbWidth   int
	ThumbRows    int
	ThumbColumns int
	Renderer     string
	RenderDPI    int
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LogConfig controls structured logging output.
// File is optional; when set, logs are also written to a rotating file.
type LogConfig struct {
	Level        string
	File         string
	MaxSizeMB    int
	MaxBackups   int
	MaxAgeDays   int
	Compress     bool
	TimeZoneName string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	TimeZone    *time.Location
	BodyLimitMB int
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Store       StoreConfig
	Auth        AuthConfig
	Log         LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	tzName := getEnv("TZ", "UTC")
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		TimeZone:    loadLocation(tzName),
		BodyLimitMB: getEnvInt("BODY_LIMIT_MB", 64),
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "postgres"),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			SQLitePath:         getEnv("SQLITE_PATH", "docarchive.db"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Store: StoreConfig{
			Backend:      getEnv("STORAGE_BACKEND", "fs"),
			Root:         getEnv("DOCUMENTSTORE_PATH", "documents"),
			TempDir:      getEnv("STORE_TMP_DIR", os.TempDir()),
			ThumbWidth:   getEnvInt("THUMB_WIDTH", 200),
			ThumbRows:    getEnvInt("THUMB_ROWS", 3),
			ThumbColumns: getEnvInt("THUMB_COLUMNS", 4),
			Renderer:     getEnv("PDF_RENDERER", "pdftoppm"),
			RenderDPI:    getEnvInt("PDF_RENDER_DPI", 72),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("JWT_TTL", 30*24*time.Hour),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			File:         getEnv("LOG_FILE", ""),
			MaxSizeMB:    getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups:   getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays:   getEnvInt("LOG_MAX_AGE_DAYS", 28),
			Compress:     getEnvBool("LOG_COMPRESS", true),
			TimeZoneName: tzName,
		},
	}
}

// PageSize is the number of documents shown on one index page.
func (s StoreConfig) PageSize() int {
	n := s.ThumbRows * s.ThumbColumns
	if n <= 0 {
		return 12
	}
	return n
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
