// Package config loads the dashboard configuration from defaults,
// an optional YAML file and the environment, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort    = 8080
	DefaultOwner   = "Geff115"
	DefaultRepo    = "repo-ranger"
	DefaultPerPage = 50
	DefaultAPI     = "rest"
	DefaultBaseURL = "https://api.github.com/"

	// MaxPerPage is the largest page size the GitHub API accepts.
	MaxPerPage = 100
	MaxPort    = 65535
)

// Config holds application configuration.
type Config struct {
	Port int `yaml:"port"`

	// GitHubURL is the REST API root; GitHubToken is optional for the REST API.
	GitHubURL   string `yaml:"github_url"`
	GitHubToken string `yaml:"github_token"`

	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	PerPage int    `yaml:"per_page"`
	// API is "rest" or "graphql".
	API string `yaml:"api"`

	// RefreshInterval re-fetches issues periodically. Zero fetches once at startup.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// WebhookPath is shown on the explainer page. Nothing listens on it.
	WebhookPath string `yaml:"webhook_path"`
}

// Load builds the configuration. path may be empty, in which case no file is read.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:      DefaultPort,
		GitHubURL: DefaultBaseURL,
		Owner:     DefaultOwner,
		Repo:      DefaultRepo,
		PerPage:   DefaultPerPage,
		API:       DefaultAPI,
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = p
	}
	c.GitHubURL = getEnvOrDefault("GITHUB_URL", c.GitHubURL)
	c.GitHubToken = getEnvOrDefault("GITHUB_TOKEN", c.GitHubToken)
	c.Owner = getEnvOrDefault("REPORANGER_OWNER", c.Owner)
	c.Repo = getEnvOrDefault("REPORANGER_REPO", c.Repo)
	c.API = getEnvOrDefault("REPORANGER_API", c.API)
	c.WebhookPath = getEnvOrDefault("REPORANGER_WEBHOOK_PATH", c.WebhookPath)

	if v := os.Getenv("REPORANGER_PER_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REPORANGER_PER_PAGE %q: %w", v, err)
		}
		c.PerPage = n
	}
	if v := os.Getenv("REPORANGER_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REPORANGER_REFRESH_INTERVAL %q: %w", v, err)
		}
		c.RefreshInterval = d
	}
	return nil
}

// Validate checks the configuration for values the GitHub API would reject.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > MaxPort {
		return fmt.Errorf("port must be between 1 and %d, got %d", MaxPort, c.Port)
	}
	if c.Owner == "" || c.Repo == "" {
		return errors.New("owner and repo must be set")
	}
	if c.PerPage < 1 || c.PerPage > MaxPerPage {
		return fmt.Errorf("per_page must be between 1 and %d, got %d", MaxPerPage, c.PerPage)
	}
	switch c.API {
	case "rest":
	case "graphql":
		if c.GitHubToken == "" {
			return errors.New("the graphql api requires GITHUB_TOKEN")
		}
	default:
		return fmt.Errorf("api must be rest or graphql, got %q", c.API)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative, got %v", c.RefreshInterval)
	}
	return nil
}

// Repository returns owner/repo.
func (c *Config) Repository() string {
	return c.Owner + "/" + c.Repo
}

// HasToken returns true if requests are authenticated.
func (c *Config) HasToken() bool {
	return c.GitHubToken != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
