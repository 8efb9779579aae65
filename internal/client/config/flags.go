package config

import (
	"github.com/dmitrijs2005/ireporter/internal/flagx"
	"github.com/spf13/pflag"
)

var knownFlags = []string{
	"-a", "--api",
	"-p", "--poll-interval",
	"-i", "--online-interval",
	"-t", "--timeout",
	"-d", "--db",
	"-w", "--width",
	"--log-backend", "--log-level", "--log-file",
	"--media-bucket", "--media-endpoint",
}

// parseFlags populates Config fields from command-line flags.
//
// Only the flags listed in knownFlags are looked at (see flagx.FilterArgs),
// so the config file flag and anything meant for other components is
// ignored. Parse errors panic.
func parseFlags(cfg *Config, args []string) {
	fs := pflag.NewFlagSet("ireporter", pflag.ContinueOnError)

	fs.StringVarP(&cfg.APIBaseURL, "api", "a", cfg.APIBaseURL, "base URL of the iReporter REST API")
	fs.DurationVarP(&cfg.NotificationPollInterval, "poll-interval", "p", cfg.NotificationPollInterval, "notification polling interval")
	fs.DurationVarP(&cfg.OnlineCheckInterval, "online-interval", "i", cfg.OnlineCheckInterval, "connectivity probe interval")
	fs.DurationVarP(&cfg.RequestTimeout, "timeout", "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVarP(&cfg.DatabasePath, "db", "d", cfg.DatabasePath, "path to the local session database")
	fs.IntVarP(&cfg.ViewportWidth, "width", "w", cfg.ViewportWidth, "viewport width in columns")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "logger implementation: slog or zap")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file instead of stderr")
	fs.StringVar(&cfg.Media.Bucket, "media-bucket", cfg.Media.Bucket, "S3 bucket for incident attachments")
	fs.StringVar(&cfg.Media.Endpoint, "media-endpoint", cfg.Media.Endpoint, "custom S3 endpoint (MinIO etc.)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}
}
