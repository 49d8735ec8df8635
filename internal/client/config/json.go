package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cloudvault/internal/flagx"
	"github.com/dmitrijs2005/cloudvault/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" from "zero" so a partial file only overrides what it names.
type JsonConfig struct {
	APIBaseURL      *string         `json:"api_base_url"`
	Backend         *string         `json:"backend"`
	DataDir         *string         `json:"data_dir"`
	DownloadDir     *string         `json:"download_dir"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	RetryMaxElapsed *timex.Duration `json:"retry_max_elapsed"`
	NoticeTTL       *timex.Duration `json:"notice_ttl"`
	LogLevel        *string         `json:"log_level"`
	S3              *S3Config       `json:"s3"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.Backend != nil {
		cfg.Backend = Backend(*jc.Backend)
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.DownloadDir != nil {
		cfg.DownloadDir = *jc.DownloadDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryMaxElapsed != nil {
		cfg.RetryMaxElapsed = jc.RetryMaxElapsed.Duration
	}
	if jc.NoticeTTL != nil {
		cfg.NoticeTTL = jc.NoticeTTL.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.S3 != nil {
		cfg.S3 = *jc.S3
	}
	return nil
}
