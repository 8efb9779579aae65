package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/ireporter/internal/flagx"
	"github.com/dmitrijs2005/ireporter/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Zero values
// leave the corresponding Config field untouched.
type FileConfig struct {
	APIBaseURL               string         `json:"api_base_url" yaml:"api_base_url"`
	NotificationPollInterval timex.Duration `json:"notification_poll_interval" yaml:"notification_poll_interval"`
	OnlineCheckInterval      timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout           timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DatabasePath             string         `json:"database_path" yaml:"database_path"`
	ViewportWidth            int            `json:"viewport_width" yaml:"viewport_width"`
	LogBackend               string         `json:"log_backend" yaml:"log_backend"`
	LogLevel                 string         `json:"log_level" yaml:"log_level"`
	LogFile                  string         `json:"log_file" yaml:"log_file"`
	Media                    FileMedia      `json:"media" yaml:"media"`
}

type FileMedia struct {
	Bucket        string `json:"bucket" yaml:"bucket"`
	Region        string `json:"region" yaml:"region"`
	Endpoint      string `json:"endpoint" yaml:"endpoint"`
	AccessKey     string `json:"access_key" yaml:"access_key"`
	SecretKey     string `json:"secret_key" yaml:"secret_key"`
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url"`
}

// parseFile overlays cfg with values from the file named by -c/--config.
// YAML is used for .yaml/.yml files, JSON otherwise. Read or decode errors
// panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setDuration(&cfg.NotificationPollInterval, fc.NotificationPollInterval)
	setDuration(&cfg.OnlineCheckInterval, fc.OnlineCheckInterval)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	if fc.ViewportWidth > 0 {
		cfg.ViewportWidth = fc.ViewportWidth
	}
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)

	setString(&cfg.Media.Bucket, fc.Media.Bucket)
	setString(&cfg.Media.Region, fc.Media.Region)
	setString(&cfg.Media.Endpoint, fc.Media.Endpoint)
	setString(&cfg.Media.AccessKey, fc.Media.AccessKey)
	setString(&cfg.Media.SecretKey, fc.Media.SecretKey)
	setString(&cfg.Media.PublicBaseURL, fc.Media.PublicBaseURL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
