package s3

import "errors"

// ErrInvalidConfig indicates a required field is missing.
var ErrInvalidConfig = errors.New("s3: invalid configuration")

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// Config holds S3-compatible sink configuration.
type Config struct {
	// Bucket receives one <Prefix>/<uuid-v7>.json object per message (required).
	Bucket string `env:"MAILER_S3_BUCKET" yaml:"bucket"`

	// Prefix is prepended to object keys, e.g. "outbox".
	Prefix string `env:"MAILER_S3_PREFIX" yaml:"prefix"`

	// Region defaults to us-east-1.
	Region string `env:"MAILER_S3_REGION" yaml:"region"`

	// Endpoint is a custom S3 endpoint URL for MinIO and other S3-compatible services.
	Endpoint string `env:"MAILER_S3_ENDPOINT" yaml:"endpoint"`

	AccessKey string `env:"MAILER_S3_ACCESS_KEY" yaml:"access_key"`
	SecretKey string `env:"MAILER_S3_SECRET_KEY" yaml:"secret_key"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"MAILER_S3_PATH_STYLE" yaml:"path_style"`
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) validate() error {
	switch {
	case c.Bucket == "":
		return errors.Join(ErrInvalidConfig, errors.New("bucket is required"))
	case c.AccessKey == "", c.SecretKey == "":
		return errors.Join(ErrInvalidConfig, errors.New("access key and secret key are required"))
	}
	return nil
}
