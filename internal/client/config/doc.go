// Package config loads runtime configuration for the CloudVault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed CLOUDVAULT_ (a .env file is loaded
//     first; -env selects another file). Nested S3 settings use
//     CLOUDVAULT_S3_*, e.g. CLOUDVAULT_S3_BUCKET.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL
//	-b string   backend: rest | s3
//	-d string   data directory
//	-o string   download directory
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080",
//	  "backend": "rest",
//	  "request_timeout": "30s",
//	  "notice_ttl": "3s",
//	  "s3": {"bucket": "vault", "region": "eu-north-1"}
//	}
package config
