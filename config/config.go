// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Token rules: defined in the genesis file, applied once when the ledger is created
//   - Runtime settings: storage backend, logging and metrics, can change between runs
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies the ledger namespace inside the data directory.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// =============================================================================
// Runtime Configuration
// =============================================================================

// Config holds runtime configuration for the ledger tooling.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Genesis file path. Empty means the built-in genesis for Network.
	Genesis string `conf:"genesis"`

	Storage StorageConfig

	Metrics MetricsConfig

	// Logging
	Log LogConfig
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `conf:"storage.backend"` // badger or memory
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	File string `conf:"metrics.file"` // empty disables export
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.teut
//	macOS:   ~/Library/Application Support/Teut
//	Windows: %APPDATA%\Teut
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".teut"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Teut")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Teut")
		}
		return filepath.Join(home, "AppData", "Roaming", "Teut")
	default:
		return filepath.Join(home, ".teut")
	}
}

// NetworkDir returns the network-specific data directory.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LedgerDir returns the ledger database directory.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.NetworkDir(), "ledger")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "teut.conf")
}
