// Package config loads docbridge configuration from YAML with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerPort      = 8060
	defaultServerTimeout   = 30
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5
	defaultRedisAddress    = "localhost:6379"
	defaultMinioEndpoint   = "localhost:9000"
	defaultMinioBucket     = "docbridge-docs"
	defaultRemoteTimeout   = 30
	defaultMaxResults      = 50
)

type Config struct {
	Debug      bool             `env:"APP_DEBUG"  yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Minio      MinioConfig      `yaml:"minio"`
	Redis      RedisConfig      `yaml:"redis"`
	Jira       JiraConfig       `yaml:"jira"`
	Confluence ConfluenceConfig `yaml:"confluence"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Narration  NarrationConfig  `yaml:"narration"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// MinioConfig holds object store connection settings.
type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"   yaml:"endpoint"`
	AccessKey string `env:"MINIO_ACCESS_KEY" yaml:"access_key"`
	SecretKey string `env:"MINIO_SECRET_KEY" yaml:"secret_key"`
	Bucket    string `env:"MINIO_BUCKET"     yaml:"bucket"`
	UseSSL    bool   `env:"MINIO_USE_SSL"    yaml:"use_ssl"`
}

// RedisConfig holds Redis connection configuration for event publishing.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"` // Feature flag for event publishing
}

// JiraConfig holds JIRA Cloud API access settings.
type JiraConfig struct {
	BaseURL        string        `env:"JIRA_URL"   yaml:"base_url"`
	Email          string        `env:"JIRA_EMAIL" yaml:"email"`
	APIToken       string        `env:"JIRA_TOKEN" yaml:"api_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxResults     int           `yaml:"max_results"`
	// DoneTransitionKeywords drive the best-effort "done" transition matcher.
	// Workflow names vary per JIRA site, so this is configuration, not logic.
	DoneTransitionKeywords []string `yaml:"done_transition_keywords"`
}

// ConfluenceConfig holds Confluence Cloud API access settings.
type ConfluenceConfig struct {
	BaseURL        string        `env:"CONFLUENCE_URL"   yaml:"base_url"`
	Email          string        `env:"CONFLUENCE_EMAIL" yaml:"email"`
	APIToken       string        `env:"CONFLUENCE_TOKEN" yaml:"api_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// CalendarConfig holds optional Google Calendar sync settings.
type CalendarConfig struct {
	Enabled         bool   `env:"CALENDAR_SYNC_ENABLED"    yaml:"enabled"`
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"  yaml:"credentials_file"`
	CalendarID      string `env:"GOOGLE_CALENDAR_ID"       yaml:"calendar_id"`
}

// NarrationConfig holds optional AI meeting narration settings.
type NarrationConfig struct {
	Enabled  bool   `env:"NARRATION_ENABLED"  yaml:"enabled"`
	Endpoint string `env:"NARRATION_ENDPOINT" yaml:"endpoint"`
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Minio.Endpoint == "" {
		return errors.New("minio.endpoint is required")
	}
	if c.Minio.Bucket == "" {
		return errors.New("minio.bucket is required")
	}
	if c.Calendar.Enabled && c.Calendar.CredentialsFile == "" {
		return errors.New("calendar.credentials_file is required when calendar sync is enabled")
	}
	if c.Narration.Enabled && c.Narration.Endpoint == "" {
		return errors.New("narration.endpoint is required when narration is enabled")
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg, err := loadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout * time.Second
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{
			"http://localhost:3000", // Meeting dashboard frontend
		}
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime * time.Minute
	}
	if cfg.Minio.Endpoint == "" {
		cfg.Minio.Endpoint = defaultMinioEndpoint
	}
	if cfg.Minio.Bucket == "" {
		cfg.Minio.Bucket = defaultMinioBucket
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Jira.RequestTimeout == 0 {
		cfg.Jira.RequestTimeout = defaultRemoteTimeout * time.Second
	}
	if cfg.Jira.MaxResults == 0 {
		cfg.Jira.MaxResults = defaultMaxResults
	}
	if len(cfg.Jira.DoneTransitionKeywords) == 0 {
		cfg.Jira.DoneTransitionKeywords = []string{
			"done", "resolve", "resolved", "close", "closed", "complete", "completed",
		}
	}
	if cfg.Confluence.RequestTimeout == 0 {
		cfg.Confluence.RequestTimeout = defaultRemoteTimeout * time.Second
	}
	if cfg.Calendar.CalendarID == "" {
		cfg.Calendar.CalendarID = "primary"
	}
}
