package configuration

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// BackendURLEnv names the variable holding the document store location.
const BackendURLEnv = "DB_URL"

type Config struct {
	Database DatabaseConfig
	MinIO    MinIOConfig
	Server   ServerConfig
	Backend  BackendConfig
	Tracing  TracingConfig

	NATSURL   string
	CLAMAVURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// ShardDSNs overrides the single connection built from the fields above.
	ShardDSNs []string
}

type MinIOConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	QuarantineBucket string
	UseSSL           bool
}

type ServerConfig struct {
	Port         string
	MaxBodyBytes int64
	CSRFEnforce  bool
}

type BackendConfig struct {
	ImageCollection string
	ServiceToken    string
}

type TracingConfig struct {
	Enabled bool
	Service string
	Env     string
}

// Load reads an optional .env file and builds the configuration from the
// environment. Variables already set win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "5432"),
			User:      getEnv("DB_USER", "imageuser"),
			Password:  getEnv("DB_PASSWORD", "imagepassword"),
			DBName:    getEnv("DB_NAME", "imagescans"),
			SSLMode:   getEnv("DB_SSL_MODE", "disable"),
			ShardDSNs: splitList(getEnv("SCAN_LEDGER_SHARDS", "")),
		},
		MinIO: MinIOConfig{
			Endpoint:         getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:        getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:        getEnv("MINIO_SECRET_KEY", "minioadmin"),
			QuarantineBucket: getEnv("MINIO_QUARANTINE_BUCKET", "quarantine"),
			UseSSL:           getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			MaxBodyBytes: getEnvInt64("UPLOAD_MAX_BODY_BYTES", 32<<20),
			CSRFEnforce:  getEnv("CSRF_ENFORCE", "false") == "true",
		},
		Backend: BackendConfig{
			ImageCollection: getEnv("IMAGE_COLLECTION", "files"),
			ServiceToken:    getEnv("BACKEND_SERVICE_TOKEN", ""),
		},
		Tracing: TracingConfig{
			Enabled: getEnv("DD_TRACE_ENABLED", "false") == "true",
			Service: getEnv("DD_SERVICE", "image-service"),
			Env:     getEnv("DD_ENV", ""),
		},
		NATSURL:   getEnv("NATS_URL", "nats://localhost:4222"),
		CLAMAVURL: getEnv("CLAMAV_URL", "tcp://localhost:3310"),
	}
}

// BackendURL returns the document store location. It is read on every call
// so a missing value fails the request that needs it rather than startup.
func (c *Config) BackendURL() string {
	return strings.TrimSpace(os.Getenv(BackendURLEnv))
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Connections returns the ledger shard DSNs, at least one.
func (c *DatabaseConfig) Connections() []string {
	if len(c.ShardDSNs) > 0 {
		return c.ShardDSNs
	}
	return []string{c.ConnectionString()}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
