package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mindfulplus/mindful/internal/flagx"
	"github.com/mindfulplus/mindful/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty values
// leave the current setting untouched.
type JsonConfig struct {
	Timezone        string         `json:"timezone"`
	DocstoreDSN     string         `json:"docstore_dsn"`
	SessionDB       string         `json:"session_db"`
	UploaderURL     string         `json:"uploader_url"`
	IdentityBaseURL string         `json:"identity_base_url"`
	LogLevel        string         `json:"log_level"`
	NotifyInterval  timex.Duration `json:"notify_interval"`
	NotifyAttempts  int            `json:"notify_attempts"`
	Assets          struct {
		Bucket        string `json:"bucket"`
		Region        string `json:"region"`
		Endpoint      string `json:"endpoint"`
		PublicBaseURL string `json:"public_base_url"`
	} `json:"assets"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.Timezone, jc.Timezone)
	overlay(&cfg.DocstoreDSN, jc.DocstoreDSN)
	overlay(&cfg.SessionDB, jc.SessionDB)
	overlay(&cfg.UploaderURL, jc.UploaderURL)
	overlay(&cfg.IdentityBaseURL, jc.IdentityBaseURL)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.Assets.Bucket, jc.Assets.Bucket)
	overlay(&cfg.Assets.Region, jc.Assets.Region)
	overlay(&cfg.Assets.Endpoint, jc.Assets.Endpoint)
	overlay(&cfg.Assets.PublicBaseURL, jc.Assets.PublicBaseURL)
	if jc.NotifyInterval.Duration > 0 {
		cfg.NotifyInterval = jc.NotifyInterval.Duration
	}
	if jc.NotifyAttempts > 0 {
		cfg.NotifyAttempts = jc.NotifyAttempts
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
