package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/flagx"
)

// parseFlags applies the command-line flags owned by the config loader:
//
//	-a string   API base URL
//	-b string   backend: rest | s3
//	-d string   data directory (session database, default downloads)
//	-o string   download directory
//	-t int      request timeout in seconds
//	-l string   log level: debug | info | warn | error
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-b", "-d", "-o", "-t", "-l"})

	fs := flag.NewFlagSet("cloudvault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	backend := fs.String("b", string(cfg.Backend), "backend: rest or s3")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.Backend = Backend(*backend)
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
