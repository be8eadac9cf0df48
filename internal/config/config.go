package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Client   ClientConfig   `yaml:"client"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Cipher   CipherConfig   `yaml:"cipher"`
	Events   EventsConfig   `yaml:"events"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ClientConfig locates the frontend dev server that the reverse proxy
// forwards non-API traffic to, and that login flows redirect back to.
type ClientConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
}

type DatabaseConfig struct {
	URI  string `yaml:"uri"`
	Name string `yaml:"name"`
}

type AuthConfig struct {
	SessionSecret      string        `yaml:"session_secret"`
	SessionCookieTTL   time.Duration `yaml:"session_cookie_ttl"`
	SessionStoreTTL    time.Duration `yaml:"session_store_ttl"`
	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	GoogleCallbackURL  string        `yaml:"google_callback_url"`
}

type CipherConfig struct {
	Passphrase string `yaml:"passphrase"`
}

// EventsConfig makes the submit policy explicit: "append" adds each submitted
// entry to the user's event list, "replace" overwrites the list with the new
// entry.
type EventsConfig struct {
	OnSubmit string `yaml:"on_submit"`
}

const (
	SubmitAppend  = "append"
	SubmitReplace = "replace"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("CLIENT_DB"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("CLIENT_ID"); v != "" {
		c.Auth.GoogleClientID = v
	}
	if v := os.Getenv("CLIENT_SECRET"); v != "" {
		c.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("APP_HOSTNAME"); v != "" {
		c.Server.Host = v
		c.Client.Hostname = v
	}
	if v, err := strconv.Atoi(os.Getenv("CLIENT_PORT")); err == nil && v > 0 {
		c.Client.Port = v
	}
	if v, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil && v > 0 {
		c.Server.Port = v
	}
	if v := os.Getenv("DAYPLAN_SESSION_SECRET"); v != "" {
		c.Auth.SessionSecret = v
	}
	if v := os.Getenv("DAYPLAN_CIPHER_PASSPHRASE"); v != "" {
		c.Cipher.Passphrase = v
	}
}

func (c *Config) validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required")
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("auth.session_secret is required")
	}
	if len(c.Auth.SessionSecret) < 32 {
		return fmt.Errorf("auth.session_secret must be at least 32 characters")
	}
	if c.Cipher.Passphrase == "" {
		return fmt.Errorf("cipher.passphrase is required")
	}
	if c.Events.OnSubmit != SubmitAppend && c.Events.OnSubmit != SubmitReplace {
		return fmt.Errorf("events.on_submit must be %q or %q", SubmitAppend, SubmitReplace)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "Dayplan Server"
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Client.Hostname == "" {
		c.Client.Hostname = c.Server.Host
	}
	if c.Client.Port == 0 {
		c.Client.Port = 3000
	}
	if c.Database.Name == "" {
		c.Database.Name = "dayplan"
	}
	if c.Auth.SessionCookieTTL == 0 {
		c.Auth.SessionCookieTTL = 84 * time.Hour // 3.5 days
	}
	if c.Auth.SessionStoreTTL == 0 {
		c.Auth.SessionStoreTTL = 31 * 24 * time.Hour
	}
	if c.Auth.GoogleCallbackURL == "" {
		c.Auth.GoogleCallbackURL = fmt.Sprintf("http://%s:%d/auth/google/callback", c.Server.Host, c.Server.Port)
	}
	if c.Events.OnSubmit == "" {
		c.Events.OnSubmit = SubmitAppend
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ClientOrigin is the browser-facing origin of the frontend, used for
// post-login redirects and as the reverse proxy target.
func (c *Config) ClientOrigin() string {
	return fmt.Sprintf("http://%s:%d", c.Client.Hostname, c.Client.Port)
}
