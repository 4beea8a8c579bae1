package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"permit-tracker-go/pkg/logger"
)

type Config struct {
	HTTP           HTTPConfig
	Env            string
	AllowedOrigins []string
	MetricsEnabled bool
	SeedOnStart    bool
	DB             DBConfig
	Auth           AuthConfig
	Storage        StorageConfig
	Checklist      ChecklistConfig
	Packages       PackagesConfig
}

type HTTPConfig struct {
	Port              string
	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type DBConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuthConfig struct {
	URL            string
	APIKey         string
	Timeout        time.Duration
	JWKSURL        string
	JWTSecret      string
	JWTIssuer      string
	JWTLeeway      time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
	MockUserAvatar string
}

type StorageConfig struct {
	Backend        string
	LocalDir       string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3Prefix       string
	S3AccessKeyID  string
	S3SecretKey    string
	UploadURLTTL   time.Duration
	MaxUploadBytes int64
}

type ChecklistConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

type PackagesConfig struct {
	StrictStatus bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Port:              getEnv("HTTP_PORT", "8080"),
			RequestTimeout:    getEnvDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			ReadHeaderTimeout: getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			IdleTimeout:       getEnvDuration("HTTP_IDLE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout:   getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		SeedOnStart:    getEnvBool("SEED_ON_START", false),
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "permit_tracker"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			URL:            getEnv("AUTH_URL", ""),
			APIKey:         getEnv("AUTH_API_KEY", ""),
			Timeout:        getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
			JWKSURL:        getEnv("AUTH_JWKS_URL", ""),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer:      getEnv("AUTH_JWT_ISSUER", ""),
			JWTLeeway:      getEnvDuration("AUTH_JWT_LEEWAY", 30*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
			MockUserAvatar: getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
			LocalDir:       getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			S3Bucket:       getEnv("STORAGE_S3_BUCKET", ""),
			S3Region:       getEnv("STORAGE_S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("STORAGE_S3_ENDPOINT", ""),
			S3Prefix:       getEnv("STORAGE_S3_PREFIX", ""),
			S3AccessKeyID:  getEnv("STORAGE_S3_ACCESS_KEY_ID", ""),
			S3SecretKey:    getEnv("STORAGE_S3_SECRET_ACCESS_KEY", ""),
			UploadURLTTL:   getEnvDuration("STORAGE_UPLOAD_URL_TTL", 15*time.Minute),
			MaxUploadBytes: int64(getEnvInt("STORAGE_MAX_UPLOAD_BYTES", 50<<20)),
		},
		Checklist: ChecklistConfig{
			CacheSize: getEnvInt("CHECKLIST_CACHE_SIZE", 512),
			CacheTTL:  getEnvDuration("CHECKLIST_CACHE_TTL", 10*time.Minute),
		},
		Packages: PackagesConfig{
			StrictStatus: getEnvBool("PACKAGE_STRICT_STATUS", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if strings.TrimSpace(c.Storage.LocalDir) == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required for local storage")
		}
	case StorageS3:
		if strings.TrimSpace(c.Storage.S3Bucket) == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return c.Name + ".db"
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
