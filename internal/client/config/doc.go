// Package config loads runtime configuration for the iReporter CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or --config. Files ending in
//     .yaml or .yml are decoded as YAML, everything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a, --api string               base URL of the REST API
//	-p, --poll-interval duration   notification polling interval (30s)
//	-i, --online-interval duration connectivity probe interval (5s)
//	-t, --timeout duration         per-request timeout (15s)
//	-d, --db string                local session database (ireporter.db)
//	-w, --width int                viewport width in columns (1024)
//	    --log-backend string       slog or zap
//	    --log-level string         debug, info, warn, error
//	    --log-file string          log destination instead of stderr
//	    --media-bucket string      S3 bucket for attachments
//	    --media-endpoint string    custom S3 endpoint
//
// # File schema
//
// Intervals use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:5001/api",
//	  "notification_poll_interval": "30s",
//	  "viewport_width": 600,
//	  "media": {"bucket": "ireporter-media", "region": "eu-west-1"}
//	}
//
// Malformed files or flags panic during LoadConfig.
package config
