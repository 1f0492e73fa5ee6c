package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Storage  *storageConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"bulk_operations"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type storageConfig struct {
	Endpoint        string `envconfig:"BULK_OPERATIONS_S3_ENDPOINT" default:"localhost:9000"`
	Bucket          string `envconfig:"BULK_OPERATIONS_S3_BUCKET" default:"bulk-operations"`
	AccessKey       string `envconfig:"BULK_OPERATIONS_S3_ACCESS_KEY" default:""`
	SecretAccessKey string `envconfig:"BULK_OPERATIONS_S3_SECRET_KEY" default:""`
	UseSSL          bool   `envconfig:"BULK_OPERATIONS_S3_SSL" default:"false"`
}

type svcConfig struct {
	LogLevel string `envconfig:"BULK_OPERATIONS_LOG_LEVEL" default:"info"`
	// Total attempts for uploading the identifiers file to a scheduled
	// data export job before the operation is failed.
	FileUploadingMaxRetryCount int    `envconfig:"BULK_OPERATIONS_FILE_UPLOADING_MAX_RETRY_COUNT" default:"3"`
	DataExportURL              string `envconfig:"BULK_OPERATIONS_DATA_EXPORT_URL" default:"http://localhost:8081"`
	BulkEditURL                string `envconfig:"BULK_OPERATIONS_BULK_EDIT_URL" default:"http://localhost:8082"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDefault returns the configuration with every value at its default,
// ignoring the environment. Used by tests.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type:     "pgsql",
			Hostname: "localhost",
			Port:     "5432",
			Name:     "bulk_operations",
			User:     "admin",
			Password: "adminpass",
		},
		Storage: &storageConfig{
			Endpoint: "localhost:9000",
			Bucket:   "bulk-operations",
		},
		Service: &svcConfig{
			LogLevel:                   "info",
			FileUploadingMaxRetryCount: 3,
		},
	}
}

// NewTestConfig points the store at an in-memory sqlite database shared
// across connections, so suites can run without a postgres server.
func NewTestConfig() *Config {
	cfg := NewDefault()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "file::memory:?cache=shared"
	return cfg
}
