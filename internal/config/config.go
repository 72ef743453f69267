package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

const (
	// EnvPrefix is prepended to upper-cased file keys to form override variables.
	EnvPrefix = "CHATGPT_"

	appDirName   = "chatgpt"
	fileName     = "config.toml"
	apiKeyPrefix = "sk-"
	apiKeyLength = 51
)

var (
	ErrConfigDirUnavailable = errors.New("failed to get config dir")
	ErrConfigIO             = errors.New("config io")
	ErrInvalidAPIKey        = errors.New("the openai api key should start with 'sk-' and should be 51 characters")
)

// Config holds application configuration
type Config struct {
	Dir    string // Per-user config directory
	Path   string // TOML file inside Dir
	LogDir string // Rotating logs and telemetry output

	OpenAIAPIKey string
}

// file mirrors the on-disk TOML document
type file struct {
	OpenAIAPIKey string `toml:"openai_api_key,omitempty"`
}

// DefaultDir returns the platform config directory for the application
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfigDirUnavailable, err)
	}
	return filepath.Join(base, appDirName), nil
}

// New creates the config directory if needed and returns a Config rooted there.
// No file is read.
func New(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create config dir: %w", ErrConfigIO, err)
	}
	return &Config{
		Dir:    dir,
		Path:   filepath.Join(dir, fileName),
		LogDir: filepath.Join(dir, "logs"),
	}, nil
}

// Load reads the TOML file, then applies CHATGPT_* environment overrides.
// A missing file is not an error.
func (c *Config) Load() error {
	var f file
	data, err := os.ReadFile(c.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("%w: failed to read config file: %w", ErrConfigIO, err)
	default:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return fmt.Errorf("%w: failed to parse config file %s: %w", ErrConfigIO, c.Path, err)
		}
	}

	c.OpenAIAPIKey = envOr(EnvPrefix+"OPENAI_API_KEY", f.OpenAIAPIKey)
	return nil
}

// HasAPIKey reports whether a credential was configured
func (c *Config) HasAPIKey() bool {
	return c.OpenAIAPIKey != ""
}

// SaveAPIKey validates key and writes it to the config file
func (c *Config) SaveAPIKey(key string) error {
	if err := ValidateAPIKey(key); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(file{OpenAIAPIKey: key}); err != nil {
		return fmt.Errorf("%w: failed to encode config: %w", ErrConfigIO, err)
	}
	if err := os.WriteFile(c.Path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: failed to store openai api key in config file: %w", ErrConfigIO, err)
	}

	c.OpenAIAPIKey = key
	return nil
}

// Delete removes the config file. Removing a file that does not exist fails.
func (c *Config) Delete() error {
	if err := os.Remove(c.Path); err != nil {
		return fmt.Errorf("%w: failed to delete config file: %w", ErrConfigIO, err)
	}
	c.OpenAIAPIKey = ""
	return nil
}

// ValidateAPIKey checks the shape of an OpenAI secret key
func ValidateAPIKey(key string) error {
	if !strings.HasPrefix(key, apiKeyPrefix) || utf8.RuneCountInString(key) != apiKeyLength {
		return ErrInvalidAPIKey
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
