package config

import (
	"time"

	"github.com/mindfulplus/mindful/internal/identity"
	"github.com/mindfulplus/mindful/internal/timex"
)

// Assets configures optional S3-compatible hosting of profile photos.
// Hosting is enabled when Bucket is set.
type Assets struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

func (a Assets) Enabled() bool { return a.Bucket != "" }

type Config struct {
	WebAPIKey       string
	ProjectID       string
	ServiceAccount  identity.ServiceAccount
	IdentityBaseURL string

	Assets Assets

	UploaderURL    string
	NotifyInterval time.Duration
	NotifyAttempts int

	Timezone      string
	DocstoreDSN   string
	SessionDB     string
	SessionSecret string
	LogLevel      string
}

const DefaultUploaderURL = "https://mindful-imagenes.onrender.com"

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.UploaderURL = DefaultUploaderURL
	c.NotifyInterval = time.Second
	c.NotifyAttempts = 60
	c.Timezone = timex.DefaultZone
	c.DocstoreDSN = "memory:"
	c.SessionDB = "mindful-session.db"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and flags found in args (normally os.Args[1:]). Later sources
// take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
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

// Validate checks values that the sources cannot check on their own.
func (c *Config) Validate() error {
	if _, err := timex.LoadLocation(c.Timezone); err != nil {
		return err
	}
	if c.NotifyAttempts <= 0 || c.NotifyInterval <= 0 {
		return errInvalidNotify
	}
	return nil
}
