package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the iReporter CLI.
//
// Units: every interval is a time.Duration.
type Config struct {
	APIBaseURL               string
	NotificationPollInterval time.Duration
	OnlineCheckInterval      time.Duration
	RequestTimeout           time.Duration
	DatabasePath             string
	ViewportWidth            int

	LogBackend string
	LogLevel   string
	LogFile    string

	Media Media
}

// Media configures the optional S3-compatible attachment store. Uploads are
// disabled while Bucket is empty.
type Media struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Enabled reports whether attachments can be uploaded.
func (m Media) Enabled() bool {
	return m.Bucket != ""
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5001/api"
	c.NotificationPollInterval = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "ireporter.db"
	c.ViewportWidth = 1024
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.Media.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
