package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// Backend selects the implementation of the remote file gateway.
type Backend string

const (
	BackendREST Backend = "rest"
	BackendS3   Backend = "s3"
)

// S3Config addresses a bucket for the direct object-store backend.
type S3Config struct {
	Endpoint     string `env:"ENDPOINT" json:"endpoint"`
	Region       string `env:"REGION" json:"region"`
	Bucket       string `env:"BUCKET" json:"bucket"`
	AccessKey    string `env:"ACCESS_KEY" json:"access_key"`
	SecretKey    string `env:"SECRET_KEY" json:"secret_key"`
	UsePathStyle bool   `env:"USE_PATH_STYLE" json:"use_path_style"`
}

// Config holds runtime settings for the CloudVault CLI.
type Config struct {
	APIBaseURL      string        `env:"API_URL"`
	Backend         Backend       `env:"BACKEND"`
	DataDir         string        `env:"DATA_DIR"`
	DownloadDir     string        `env:"DOWNLOAD_DIR"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	RetryMaxElapsed time.Duration `env:"RETRY_MAX_ELAPSED"`
	NoticeTTL       time.Duration `env:"NOTICE_TTL"`
	LogLevel        string        `env:"LOG_LEVEL"`
	S3              S3Config      `envPrefix:"S3_"`
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.Backend = BackendREST
	c.DataDir = ".cloudvault"
	c.DownloadDir = ""
	c.RequestTimeout = 30 * time.Second
	c.RetryMaxElapsed = 10 * time.Second
	c.NoticeTTL = 3 * time.Second
	c.LogLevel = "info"
	c.S3 = S3Config{Region: "us-east-1"}
}

// DatabasePath is the sqlite file holding the persisted session.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "session.db")
}

// DownloadPath is where downloaded files land: DownloadDir when set,
// otherwise DataDir/downloads.
func (c *Config) DownloadPath() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	return filepath.Join(c.DataDir, "downloads")
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendREST:
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid api base url %q", c.APIBaseURL)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return errors.New("s3 backend requires a bucket")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.DataDir == "" {
		return errors.New("data dir must not be empty")
	}
	if c.NoticeTTL <= 0 {
		return errors.New("notice ttl must be positive")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then command-line flags; later sources override earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
