// Package config loads and saves the user's settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultRepo         = "https://github.com/tailuge/codorebyu"
	DefaultSystemPrompt = "You are a helpful code reviewer. Provide a concise code review with just one or two key points for improvement."
	DefaultProvider     = "gemini"

	globalConfigPath = ".config/codoreview/config.toml"
	historyFile      = "history.db"
)

var ErrNotFound = errors.New("config file not found")

type Config struct {
	APIKey          string `toml:"api_key"`
	SystemPrompt    string `toml:"system_prompt"`
	Provider        string `toml:"provider"`
	Model           string `toml:"model,omitempty"`
	APIBase         string `toml:"api_base,omitempty"`
	GitHubToken     string `toml:"github_token,omitempty"`
	DefaultRepo     string `toml:"default_repo"`
	Branch          string `toml:"branch,omitempty"`
	ExpandByDefault bool   `toml:"expand_by_default"`
	HistoryDB       string `toml:"history_db,omitempty"`
	LogFile         string `toml:"log_file,omitempty"`
}

func Default() *Config {
	return &Config{
		SystemPrompt: DefaultSystemPrompt,
		Provider:     DefaultProvider,
		DefaultRepo:  DefaultRepo,
	}
}

// Path returns $CODOREVIEW_CONFIG, or the file under ~/.config.
func Path() (string, error) {
	if envPath := os.Getenv("CODOREVIEW_CONFIG"); envPath != "" {
		return envPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}

	return filepath.Join(home, globalConfigPath), nil
}

// Load reads the settings file. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFile(path)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile decodes path over the defaults, so keys absent from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("access config: %w", err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := f.Chmod(0600); err != nil {
		return fmt.Errorf("set config permissions: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}

// IsConfigured reports whether reviews can be requested.
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// HistoryPath returns the review history database path, defaulting to a file
// next to the settings file.
func (c *Config) HistoryPath() (string, error) {
	if c.HistoryDB != "" {
		return c.HistoryDB, nil
	}

	path, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), historyFile), nil
}

func Delete() error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config: %w", err)
	}

	return nil
}
