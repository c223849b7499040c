package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendBigQuery  = "bigquery"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"local"`
	Server   ServerConfig
	Storage  StorageConfig
	BigQuery BigQueryConfig
	Firebase FirebaseConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

type ServerConfig struct {
	Port string `env:"SERVER_PORT" env-default:"8080"`
	// Empty means every origin is allowed.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND" env-default:"bigquery"`
	Table   string `env:"OBJECTIVES_TABLE" env-default:"activation_objectives"`
}

type BigQueryConfig struct {
	ProjectID string `env:"GCP_PROJECT_ID"`
	Dataset   string `env:"BIGQUERY_DATASET"`
	// ServiceAccountKey is the inline JSON key; CredentialsFile is used when it is empty.
	ServiceAccountKey string `env:"GCP_SERVICE_ACCOUNT_KEY"`
	CredentialsFile   string `env:"GCP_CREDENTIALS_FILE"`
}

type FirebaseConfig struct {
	CredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
}

type PostgresConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     int    `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" env-default:"data/objectives.db"`
}

// The table name is interpolated into SQL, so it is restricted to identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads .env (when present) into the process environment, then the
// environment into a Config. The returned bool reports whether .env was found.
func Load() (*Config, bool, error) {
	dotenv := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("loading .env: %w", err)
		}
		dotenv = false
	}

	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, dotenv, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, err
	}
	return cfg, dotenv, nil
}

// Validate reports the settings the selected backend needs but does not have.
func (c *Config) Validate() error {
	var missing []string
	require := func(value, name string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch c.Storage.Backend {
	case BackendBigQuery:
		require(c.BigQuery.ProjectID, "GCP_PROJECT_ID")
		require(c.BigQuery.Dataset, "BIGQUERY_DATASET")
		if c.BigQuery.ServiceAccountKey == "" && c.BigQuery.CredentialsFile == "" {
			missing = append(missing, "GCP_SERVICE_ACCOUNT_KEY or GCP_CREDENTIALS_FILE")
		}
	case BackendFirestore:
		require(c.Firebase.CredentialsPath, "FIREBASE_CREDENTIALS_PATH")
	case BackendPostgres:
		require(c.Postgres.User, "DB_USER")
		require(c.Postgres.Name, "DB_NAME")
	case BackendSQLite:
		require(c.SQLite.Path, "SQLITE_PATH")
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if !tableNamePattern.MatchString(c.Storage.Table) {
		return fmt.Errorf("invalid OBJECTIVES_TABLE %q", c.Storage.Table)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing configuration for %s backend: %v", c.Storage.Backend, missing)
	}
	return nil
}
