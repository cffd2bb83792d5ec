package storage

import (
	"context"
	"io"
	"time"
)

// Publisher uploads generated artifacts under a fixed key.
type Publisher interface {
	// Put writes body to key, replacing any previous object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*FileInfo, error)

	// URL returns a link to key. Private objects get a pre-signed URL valid for ttl.
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name. Empty disables publishing.
	Bucket string `env:"REPORT_S3_BUCKET" yaml:"bucket"`

	AccessKey string `env:"REPORT_S3_ACCESS_KEY" yaml:"access_key"`
	SecretKey string `env:"REPORT_S3_SECRET_KEY" yaml:"secret_key"`

	// Endpoint is a custom S3 endpoint URL, for MinIO or other S3-compatible services.
	Endpoint string `env:"REPORT_S3_ENDPOINT" yaml:"endpoint"`

	Region string `env:"REPORT_S3_REGION" yaml:"region"`

	// Key is the object key the dashboard is written to.
	Key string `env:"REPORT_S3_KEY" yaml:"key"`

	// PublicURL is a CDN or public URL prefix. When set, objects are uploaded
	// public-read and linked through it.
	PublicURL string `env:"REPORT_S3_PUBLIC_URL" yaml:"public_url"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"REPORT_S3_PATH_STYLE" yaml:"path_style"`
}

// Enabled reports whether publishing is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// FileInfo describes an uploaded object.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
	Public      bool
}

// Default configuration values.
const (
	DefaultRegion = "us-east-1"
	DefaultKey    = "mailmerge/dashboard.html"
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
