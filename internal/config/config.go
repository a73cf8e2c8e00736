// Package config manages application-level configuration: the captive portal
// endpoints, attempt limits, timeouts and the keepalive schedule.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shini4i/gsbwifi/internal/fileutil"
)

const (
	// AppName is the application identifier used for XDG paths and the keyring service.
	AppName = "gsbwifi"
	// ConfigFileName is the name of the main configuration file.
	ConfigFileName = "config.json"
)

// Environment variables that override file values.
const (
	EnvPortalURL    = "WIFI_PORTAL_URL"
	EnvLoginPageURL = "WIFI_LOGIN_PAGE_URL"
	EnvAuthURL      = "WIFI_AUTH_URL"
	EnvLogoutURL    = "WIFI_LOGOUT_URL"
	EnvQuotaURL     = "WIFI_QUOTA_URL"
)

// Config represents the application configuration.
type Config struct {
	PortalURL             string   `json:"portal_url"`
	LoginPageURL          string   `json:"login_page_url"`
	AuthURL               string   `json:"auth_url,omitempty"`
	LogoutURL             string   `json:"logout_url,omitempty"`
	QuotaURL              string   `json:"quota_url,omitempty"`
	SSIDHints             []string `json:"ssid_hints"`
	MaxAttempts           int      `json:"max_attempts"`
	ConnectTimeoutSeconds int      `json:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int      `json:"read_timeout_seconds"`
	Preflight             bool     `json:"preflight"`
	KeepaliveSchedule     string   `json:"keepalive_schedule"`
	DefaultAccount        int      `json:"default_account"`
}

// DefaultConfig returns a configuration matching the GSB WiFi portal.
func DefaultConfig() *Config {
	return &Config{
		PortalURL:             "https://wifi.gsb.gov.tr",
		LoginPageURL:          "https://wifi.gsb.gov.tr/login.html",
		LogoutURL:             "https://wifi.gsb.gov.tr/logout",
		SSIDHints:             []string{"GSBWIFI"},
		MaxAttempts:           4,
		ConnectTimeoutSeconds: 4,
		ReadTimeoutSeconds:    8,
		Preflight:             true,
		KeepaliveSchedule:     "@every 5m",
		DefaultAccount:        1,
	}
}

// ConnectTimeout returns the connect timeout as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// ReadTimeout returns the read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// Paths holds the resolved configuration directories.
type Paths struct {
	ConfigDir  string
	ConfigFile string
}

// GetPaths returns the configuration paths following XDG Base Directory spec.
func GetPaths() (*Paths, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	configDir := filepath.Join(configHome, AppName)
	return &Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, ConfigFileName),
	}, nil
}

// EnsurePaths creates the configuration directory.
func (p *Paths) EnsurePaths() error {
	if err := os.MkdirAll(p.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// Load reads the configuration from disk.
// A missing file is not an error; defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk atomically.
func Save(path string, cfg *Config) error {
	if err := fileutil.WriteJSON(path, cfg, 0600); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. Variables that are already set are left untouched.
// A missing .env file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides endpoint settings with WIFI_* environment variables.
// An explicitly empty WIFI_AUTH_URL or WIFI_QUOTA_URL does not clear a file value.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvPortalURL, &c.PortalURL},
		{EnvLoginPageURL, &c.LoginPageURL},
		{EnvAuthURL, &c.AuthURL},
		{EnvLogoutURL, &c.LogoutURL},
		{EnvQuotaURL, &c.QuotaURL},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.target = v
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateURL("portal_url", c.PortalURL, true); err != nil {
		return err
	}
	if err := validateURL("login_page_url", c.LoginPageURL, true); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"auth_url":   c.AuthURL,
		"logout_url": c.LogoutURL,
		"quota_url":  c.QuotaURL,
	} {
		if err := validateURL(name, value, false); err != nil {
			return err
		}
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.ConnectTimeoutSeconds < 1 {
		return fmt.Errorf("connect timeout must be at least 1 second, got %d", c.ConnectTimeoutSeconds)
	}
	if c.ReadTimeoutSeconds < 1 {
		return fmt.Errorf("read timeout must be at least 1 second, got %d", c.ReadTimeoutSeconds)
	}
	if c.DefaultAccount < 1 {
		return fmt.Errorf("default account must be at least 1, got %d", c.DefaultAccount)
	}
	if strings.TrimSpace(c.KeepaliveSchedule) == "" {
		return errors.New("keepalive schedule must not be empty")
	}
	return nil
}

func validateURL(name, raw string, required bool) error {
	if strings.TrimSpace(raw) == "" {
		if required {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s: host is required", name)
	}
	return nil
}
