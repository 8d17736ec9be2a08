// Package config loads council configuration from the YAML config file,
// the environment, and CLI overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Built-in defaults, used when neither the config file nor the CLI says
// otherwise.
var DefaultCouncilModels = []string{
	"openai/gpt-5.2-codex",
	"openai/gpt-5.2-pro",
	"google/gemini-3-pro-preview",
	"anthropic/claude-opus-4.6",
}

const (
	DefaultChairmanModel = "anthropic/claude-opus-4.6"
	DefaultBaseURL       = "https://openrouter.ai/api/v1"
	DefaultTimeout       = 120 * time.Second
)

// FileName is the config file looked up in the user's home directory.
const FileName = ".council.yaml"

// Config is the resolved configuration for a deliberation run.
type Config struct {
	// APIKey is the OpenRouter key. When empty, the direct provider keys
	// below select per-provider backends instead.
	APIKey string

	// Direct provider keys, read from the environment only.
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	CouncilModels []string
	ChairmanModel string
	BaseURL       string
	Timeout       time.Duration
}

// Overrides carries CLI flag values that beat every other source.
type Overrides struct {
	Models   []string
	Chairman string
	Timeout  time.Duration
}

// Error is a configuration failure: a malformed file or missing required
// value. It is always fatal before any model call is made.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "config: " + e.Msg }

// file mirrors the YAML schema of ~/.council.yaml.
type file struct {
	APIKey        string   `yaml:"api_key"`
	CouncilModels []string `yaml:"council_models"`
	ChairmanModel string   `yaml:"chairman_model"`
	APIURL        string   `yaml:"api_url"`
	Timeout       float64  `yaml:"timeout"`
}

// DefaultPath returns the config file path in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load resolves configuration with the precedence
// CLI overrides > environment > config file > built-in defaults.
//
// path selects the config file; empty means DefaultPath(). A missing file
// is not an error. A .env file in the working directory is loaded into the
// environment first, without clobbering variables already set.
func Load(path string, overrides Overrides) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	cfg := &Config{
		CouncilModels: append([]string(nil), DefaultCouncilModels...),
		ChairmanModel: DefaultChairmanModel,
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
	}

	if data, err := os.ReadFile(path); err == nil {
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, &Error{Msg: fmt.Sprintf("invalid YAML in %s: %v", path, err)}
		}
		if f.APIKey != "" {
			cfg.APIKey = f.APIKey
		}
		if len(f.CouncilModels) > 0 {
			cfg.CouncilModels = f.CouncilModels
		}
		if f.ChairmanModel != "" {
			cfg.ChairmanModel = f.ChairmanModel
		}
		if f.APIURL != "" {
			cfg.BaseURL = f.APIURL
		}
		if f.Timeout > 0 {
			cfg.Timeout = time.Duration(f.Timeout * float64(time.Second))
		}
	} else if !os.IsNotExist(err) {
		return nil, &Error{Msg: fmt.Sprintf("reading %s: %v", path, err)}
	}

	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	if len(overrides.Models) > 0 {
		cfg.CouncilModels = overrides.Models
	}
	if overrides.Chairman != "" {
		cfg.ChairmanModel = overrides.Chairman
	}
	if overrides.Timeout > 0 {
		cfg.Timeout = overrides.Timeout
	}

	if cfg.APIKey == "" && !cfg.hasDirectKeys() {
		return nil, &Error{Msg: "API key required: set OPENROUTER_API_KEY " +
			"(or provider keys for direct mode) or add api_key to ~/" + FileName}
	}
	if len(cfg.CouncilModels) == 0 {
		return nil, &Error{Msg: "at least one council model is required"}
	}
	if cfg.ChairmanModel == "" {
		return nil, &Error{Msg: "chairman model is required"}
	}

	return cfg, nil
}

func (c *Config) hasDirectKeys() bool {
	return c.AnthropicAPIKey != "" || c.OpenAIAPIKey != "" || c.GoogleAPIKey != ""
}
