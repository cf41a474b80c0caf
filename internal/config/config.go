package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/legalia/legalia/internal/errors"
)

// Environment variables holding the completion API credential, in order of
// preference.
var credentialEnvVars = []string{"OPENROUTER_API_KEY", "LEGALIA_API_KEY"}

// EnvPrefix is the prefix for environment overrides of config keys,
// e.g. LEGALIA_MODEL or LEGALIA_API_BASE_URL.
const EnvPrefix = "LEGALIA"

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Defaults.
const (
	DefaultModel          = "anthropic/claude-3.5-sonnet"
	DefaultAPIBaseURL     = "https://openrouter.ai/api/v1"
	DefaultMode           = "general"
	DefaultTimeoutSeconds = 60
)

// Config holds the user's preferences.
type Config struct {
	Model                 string `json:"model" mapstructure:"model"`
	APIBaseURL            string `json:"api_base_url" mapstructure:"api_base_url"`
	DefaultMode           string `json:"default_mode" mapstructure:"default_mode"`
	Theme                 string `json:"theme" mapstructure:"theme"`
	NotificationsEnabled  bool   `json:"notifications_enabled" mapstructure:"notifications_enabled"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`

	mu       sync.RWMutex
	filePath string

	// fromFile holds the values without environment overrides; envKeys
	// lists the keys an override replaced and no setter has touched since.
	fromFile settings
	envKeys  map[string]bool
}

// settings is what Save writes to disk.
type settings struct {
	Model                 string `json:"model"`
	APIBaseURL            string `json:"api_base_url"`
	DefaultMode           string `json:"default_mode"`
	Theme                 string `json:"theme"`
	NotificationsEnabled  bool   `json:"notifications_enabled"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// Config keys, as used in the file and (upper-cased, prefixed) in the env.
const (
	keyModel                 = "model"
	keyAPIBaseURL            = "api_base_url"
	keyDefaultMode           = "default_mode"
	keyTheme                 = "theme"
	keyNotificationsEnabled  = "notifications_enabled"
	keyRequestTimeoutSeconds = "request_timeout_seconds"
)

var configKeys = []string{
	keyModel, keyAPIBaseURL, keyDefaultMode, keyTheme,
	keyNotificationsEnabled, keyRequestTimeoutSeconds,
}

// Dir returns the config directory, ~/.legalia.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".legalia"), nil
}

// DefaultPath returns the path to the config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, errors.ConfigLoadFailed("home directory", err)
	}
	return LoadFrom(path)
}

func newViper(path string, withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault(keyModel, DefaultModel)
	v.SetDefault(keyAPIBaseURL, DefaultAPIBaseURL)
	v.SetDefault(keyDefaultMode, DefaultMode)
	v.SetDefault(keyTheme, ThemeDark)
	v.SetDefault(keyNotificationsEnabled, false)
	v.SetDefault(keyRequestTimeoutSeconds, DefaultTimeoutSeconds)
	return v
}

// LoadFrom reads the config at path. A missing file yields the defaults
// (with environment overrides applied). Overrides are never saved back.
func LoadFrom(path string) (*Config, error) {
	cfg, err := readConfig(path, true)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	file, err := readConfig(path, false)
	if err != nil {
		return nil, err
	}
	cfg.fromFile = file.settingsLocked()
	cfg.envKeys = make(map[string]bool)
	for _, key := range configKeys {
		if _, ok := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(key)); ok {
			cfg.envKeys[key] = true
		}
	}
	return cfg, nil
}

func readConfig(path string, withEnv bool) (*Config, error) {
	v := newViper(path, withEnv)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ConfigLoadFailed(path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	cfg := &Config{filePath: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) settingsLocked() settings {
	return settings{
		Model:                 c.Model,
		APIBaseURL:            c.APIBaseURL,
		DefaultMode:           c.DefaultMode,
		Theme:                 c.Theme,
		NotificationsEnabled:  c.NotificationsEnabled,
		RequestTimeoutSeconds: c.RequestTimeoutSeconds,
	}
}

// persistedLocked returns the current values with untouched environment
// overrides replaced by what the file had.
func (c *Config) persistedLocked() settings {
	s := c.settingsLocked()
	for key := range c.envKeys {
		switch key {
		case keyModel:
			s.Model = c.fromFile.Model
		case keyAPIBaseURL:
			s.APIBaseURL = c.fromFile.APIBaseURL
		case keyDefaultMode:
			s.DefaultMode = c.fromFile.DefaultMode
		case keyTheme:
			s.Theme = c.fromFile.Theme
		case keyNotificationsEnabled:
			s.NotificationsEnabled = c.fromFile.NotificationsEnabled
		case keyRequestTimeoutSeconds:
			s.RequestTimeoutSeconds = c.fromFile.RequestTimeoutSeconds
		}
	}
	return s
}

// normalize fills blank values that viper may have left from an explicit
// empty string in the file.
func (c *Config) normalize() {
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = DefaultModel
	}
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.DefaultMode == "" {
		c.DefaultMode = DefaultMode
	}
	if c.Theme == "" {
		c.Theme = ThemeDark
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Validate checks that the config values are usable.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown theme %q (use %q or %q)", c.Theme, ThemeDark, ThemeLight))
	}
	if c.RequestTimeoutSeconds < 0 {
		return errors.ConfigInvalid("request_timeout_seconds must not be negative")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return errors.ConfigInvalid(fmt.Sprintf("api_base_url %q must be an http(s) URL", c.APIBaseURL))
	}
	return nil
}

// Path returns the file the config is read from and saved to.
func (c *Config) Path() string {
	return c.filePath
}

// Save writes the config to disk, replacing the file atomically.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filePath == "" {
		return errors.ConfigSaveFailed("<unset>", fmt.Errorf("config has no file path"))
	}
	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c.persistedLocked(), "", "  ")
	if err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	tmp := c.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	if err := os.Rename(tmp, c.filePath); err != nil {
		os.Remove(tmp)
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetModel returns the completion model id
func (c *Config) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Model
}

// SetModel sets the completion model id
func (c *Config) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Model = model
	delete(c.envKeys, keyModel)
}

// GetAPIBaseURL returns the API root
func (c *Config) GetAPIBaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.APIBaseURL
}

// GetDefaultMode returns the mode new sessions start in
func (c *Config) GetDefaultMode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DefaultMode
}

// SetDefaultMode sets the mode new sessions start in
func (c *Config) SetDefaultMode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DefaultMode = id
	delete(c.envKeys, keyDefaultMode)
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
	delete(c.envKeys, keyTheme)
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
	delete(c.envKeys, keyNotificationsEnabled)
}

// RequestTimeout returns the transport timeout for one completion request.
func (c *Config) RequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Credential returns the completion API key from the environment and the
// variable it came from. Both are empty when no key is configured.
func Credential() (key, envVar string) {
	for _, name := range credentialEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, name
		}
	}
	return "", ""
}

// CredentialEnvVars returns the variables checked by Credential.
func CredentialEnvVars() []string {
	out := make([]string, len(credentialEnvVars))
	copy(out, credentialEnvVars)
	return out
}

// MaskCredential shows the first 8 and last 4 characters of a key. Short
// keys are fully masked.
func MaskCredential(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:8] + "..." + key[len(key)-4:]
}
