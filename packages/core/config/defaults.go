package config

import (
	"os"
	"path/filepath"
)

const (
	TransportCurl   = "curl"
	TransportNative = "native"

	DefaultTimeoutMs      = 30000
	DefaultMaxOutputBytes = 10 << 20
	DefaultMaxRedirects   = 10
	DefaultHistoryLimit   = 100
	DefaultLogLevel       = "warn"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Transport:       TransportCurl,
		CurlPath:        "curl",
		Timeout:         DefaultTimeoutMs,
		MaxOutputBytes:  DefaultMaxOutputBytes,
		FollowRedirects: BoolPtr(false),
		MaxRedirects:    DefaultMaxRedirects,
		Proxy:           "",
		DataDir:         DefaultDataDir(),
		HistoryLimit:    DefaultHistoryLimit,
		History:         BoolPtr(true),
		Environment:     "",
		Verbose:         BoolPtr(false),
		NoColor:         BoolPtr(false),
		LogLevel:        DefaultLogLevel,
		LogFile:         "",
		Headers:         nil,
	}
}

// DefaultDataDir is where collections, environments and history live:
// $HITCURL_HOME, else ~/.hitcurl, else .hitcurl in the working directory.
func DefaultDataDir() string {
	if dir := os.Getenv("HITCURL_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".hitcurl")
	}
	return ".hitcurl"
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Transport == defaults.Transport &&
		c.CurlPath == defaults.CurlPath &&
		c.Timeout == defaults.Timeout &&
		c.MaxOutputBytes == defaults.MaxOutputBytes &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.Proxy == defaults.Proxy &&
		c.DataDir == defaults.DataDir &&
		c.HistoryLimit == defaults.HistoryLimit &&
		c.GetHistory() == defaults.GetHistory() &&
		c.Environment == defaults.Environment &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFile == defaults.LogFile &&
		len(c.Headers) == 0
}
