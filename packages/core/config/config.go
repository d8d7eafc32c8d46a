package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the hitcurl configuration
type Config struct {
	Transport       string            `json:"transport,omitempty" yaml:"transport,omitempty"`
	CurlPath        string            `json:"curlPath,omitempty" yaml:"curlPath,omitempty"`
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	MaxOutputBytes  int64             `json:"maxOutputBytes,omitempty" yaml:"maxOutputBytes,omitempty"`
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	DataDir         string            `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
	HistoryLimit    int               `json:"historyLimit,omitempty" yaml:"historyLimit,omitempty"`
	History         *bool             `json:"history,omitempty" yaml:"history,omitempty"`
	Environment     string            `json:"environment,omitempty" yaml:"environment,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	LogLevel        string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFile         string            `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to false
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, false)
}

// GetHistory returns whether responses are recorded, defaulting to true
func (c *Config) GetHistory() bool {
	return getBool(c.History, true)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	".hitcurl.json",
	"hitcurl.json",
	".hitcurl.yaml",
	"hitcurl.yaml",
	"hitcurl.yml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return config, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Transport != "" {
		result.Transport = other.Transport
	}
	if other.CurlPath != "" {
		result.CurlPath = other.CurlPath
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxOutputBytes > 0 {
		result.MaxOutputBytes = other.MaxOutputBytes
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.DataDir != "" {
		result.DataDir = other.DataDir
	}
	if other.HistoryLimit > 0 {
		result.HistoryLimit = other.HistoryLimit
	}
	if other.Environment != "" {
		result.Environment = other.Environment
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		result.LogFile = other.LogFile
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.History != nil {
		result.History = other.History
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(c.Headers) > 0 || len(other.Headers) > 0 {
		result.Headers = make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = v
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	return &result
}

// Validate reports every invalid setting, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Transport) {
	case "", TransportCurl, TransportNative:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportCurl, TransportNative))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative: %d", c.Timeout))
	}
	if c.MaxOutputBytes < 0 {
		errs = append(errs, fmt.Errorf("maxOutputBytes must not be negative: %d", c.MaxOutputBytes))
	}
	if c.MaxRedirects < 0 {
		errs = append(errs, fmt.Errorf("maxRedirects must not be negative: %d", c.MaxRedirects))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("historyLimit must not be negative: %d", c.HistoryLimit))
	}
	return errors.Join(errs...)
}

// SaveConfig saves the configuration to a file, as YAML when the extension asks for it
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
