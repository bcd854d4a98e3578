// Package config provides viper-backed configuration for the sync tool.
//
// Settings are resolved in the usual precedence order: command line
// flags (bound by the CLI), YOKADI_* environment variables, the
// .yokadi-sync.yaml config file (current directory, then $HOME), and
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by the tool.
const (
	// KeyDumpDir is the dump repository directory
	KeyDumpDir = "dump-dir"
	// KeyDatabase is the SQLite database file
	KeyDatabase = "db"
	// KeyRemoteRef is the remote reference pushes are compared against
	KeyRemoteRef = "remote-ref"
	// KeyMaxPushRetries bounds the not-fast-forward retry loop
	KeyMaxPushRetries = "max-push-retries"
	// KeyWatchDebounce is the delay between a dump edit and the
	// sync cycle the watch daemon triggers for it
	KeyWatchDebounce = "watch-debounce"
)

var v *viper.Viper

// Initialize sets defaults and loads the config file if one exists.
// Safe to call once at program start.
func Initialize() error {
	v = viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	yokadiDir := filepath.Join(home, ".yokadi")

	v.SetDefault(KeyDumpDir, filepath.Join(yokadiDir, "dump"))
	v.SetDefault(KeyDatabase, filepath.Join(yokadiDir, "yokadi.db"))
	v.SetDefault(KeyRemoteRef, "origin/master")
	v.SetDefault(KeyMaxPushRetries, 10)
	v.SetDefault(KeyWatchDebounce, 2*time.Second)

	v.SetEnvPrefix("YOKADI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(".yokadi-sync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, anything else is not
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}

// Viper exposes the underlying instance so the CLI can bind flags.
func Viper() *viper.Viper {
	return v
}

// GetString returns a string setting. Returns "" if uninitialized.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt returns an integer setting. Returns 0 if uninitialized.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetBool returns a boolean setting. Returns false if uninitialized.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration returns a duration setting. Returns 0 if uninitialized.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}
