// Package config handles configuration loading and management for hitcurl.
//
// It provides functionality for:
//   - Loading configuration from .hitcurl.json or hitcurl.yaml files
//   - Default configuration values
//   - Merging command-line overrides on top of a loaded file
package config
