package config

import (
	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the plaque CLI.
type Config struct {
	DatabasePath       string `json:"database_path" envconfig:"DATABASE_PATH" validate:"required"`
	ExportDir          string `json:"export_dir" envconfig:"EXPORT_DIR" validate:"required"`
	QRSize             int    `json:"qr_size" envconfig:"QR_SIZE" validate:"gte=64,lte=2048"`
	EnrollRegistered   bool   `json:"enroll_registered" envconfig:"ENROLL_REGISTERED"`
	SnapshotPassphrase string `json:"snapshot_passphrase" envconfig:"SNAPSHOT_PASSPHRASE"`
	LogLevel           string `json:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`

	S3Bucket       string `json:"s3_bucket" envconfig:"S3_BUCKET"`
	S3Prefix       string `json:"s3_prefix" envconfig:"S3_PREFIX"`
	S3Region       string `json:"s3_region" envconfig:"S3_REGION" validate:"required_with=S3Bucket"`
	S3BaseEndpoint string `json:"s3_base_endpoint" envconfig:"S3_BASE_ENDPOINT" validate:"omitempty,url"`
	S3AccessKey    string `json:"s3_access_key" envconfig:"S3_ACCESS_KEY" validate:"required_with=S3SecretKey"`
	S3SecretKey    string `json:"s3_secret_key" envconfig:"S3_SECRET_KEY" validate:"required_with=S3AccessKey"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "plaques.db"
	c.ExportDir = "qr-exports"
	c.QRSize = 256
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// UseS3 reports whether QR exports go to a bucket instead of ExportDir.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. It panics on unreadable sources and on
// an invalid result.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
