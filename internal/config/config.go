// backend-go/internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Priority  PriorityConfig
	Narrative NarrativeConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int64
}

type AppConfig struct {
	DefaultProjectionDays int
	WorkerCount           int
	CSVDelimiter          string
	PreferredSheet        string
}

// PriorityConfig holds the coverage ratios used to rank recommendations
type PriorityConfig struct {
	UrgentRatio float64
	HighRatio   float64
	MediumRatio float64
}

type NarrativeConfig struct {
	Enabled       bool
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	NarrativeTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket holding inventory spreadsheets
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

type MetricsConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration from the environment (and .env) once per process.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = FromViper(v)
	})

	return instance
}

// SetDefaults registers the default value of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("SERVER_MAX_UPLOAD_MB", 20)

	v.SetDefault("APP_DEFAULT_PROJECTION_DAYS", 30)
	v.SetDefault("APP_WORKER_COUNT", 4)
	v.SetDefault("APP_CSV_DELIMITER", ",")
	v.SetDefault("APP_PREFERRED_SHEET", "Tabela1")

	v.SetDefault("PRIORITY_URGENT_RATIO", 0.25)
	v.SetDefault("PRIORITY_HIGH_RATIO", 0.5)
	v.SetDefault("PRIORITY_MEDIUM_RATIO", 1.0)

	v.SetDefault("NARRATIVE_ENABLED", false)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("NARRATIVE_MODEL", "gpt-4o-mini")
	v.SetDefault("NARRATIVE_TIMEOUT_SECONDS", 20)
	v.SetDefault("NARRATIVE_RETRY_ATTEMPTS", 2)
	v.SetDefault("NARRATIVE_RETRY_BACKOFF_MS", 500)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_NARRATIVE_TTL_SECONDS", 3600)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_PREFIX", "")
	v.SetDefault("STORAGE_USE_SSL", true)

	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")

	v.SetDefault("METRICS_ENABLED", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// FromViper builds a Config from an explicit viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadMB:    v.GetInt64("SERVER_MAX_UPLOAD_MB"),
		},
		App: AppConfig{
			DefaultProjectionDays: v.GetInt("APP_DEFAULT_PROJECTION_DAYS"),
			WorkerCount:           v.GetInt("APP_WORKER_COUNT"),
			CSVDelimiter:          v.GetString("APP_CSV_DELIMITER"),
			PreferredSheet:        v.GetString("APP_PREFERRED_SHEET"),
		},
		Priority: PriorityConfig{
			UrgentRatio: v.GetFloat64("PRIORITY_URGENT_RATIO"),
			HighRatio:   v.GetFloat64("PRIORITY_HIGH_RATIO"),
			MediumRatio: v.GetFloat64("PRIORITY_MEDIUM_RATIO"),
		},
		Narrative: NarrativeConfig{
			Enabled:       v.GetBool("NARRATIVE_ENABLED"),
			APIKey:        v.GetString("OPENAI_API_KEY"),
			BaseURL:       v.GetString("OPENAI_BASE_URL"),
			Model:         v.GetString("NARRATIVE_MODEL"),
			Timeout:       time.Duration(v.GetInt("NARRATIVE_TIMEOUT_SECONDS")) * time.Second,
			RetryAttempts: v.GetInt("NARRATIVE_RETRY_ATTEMPTS"),
			RetryBackoff:  time.Duration(v.GetInt("NARRATIVE_RETRY_BACKOFF_MS")) * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			NarrativeTTLSeconds: v.GetInt("CACHE_NARRATIVE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}
}

// CSVComma returns the configured CSV delimiter as a rune, defaulting to ','.
func (c AppConfig) CSVComma() rune {
	d := strings.TrimSpace(c.CSVDelimiter)
	if d == "" {
		return ','
	}
	if strings.EqualFold(d, "tab") || d == `\t` {
		return '\t'
	}
	return []rune(d)[0]
}
