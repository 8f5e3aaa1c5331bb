package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "mlidb"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/mlidb by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// DataDir returns the directory that keeps the SQLite database.
// Returns ~/.local/share/mlidb by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/mlidb/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/mlidb/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// WhitelistFilePath returns the path to the lichen whitelist.
// Returns ~/.config/mlidb/whitelist.yaml by default.
func WhitelistFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "whitelist.yaml")
}

// EnvFilePath returns the path to an optional .env file.
func EnvFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), ".env")
}

// StoreFilePath returns the default SQLite database file.
func StoreFilePath(homeDir string) string {
	return filepath.Join(DataDir(homeDir), AppName+".sqlite")
}

// CacheDir returns the directory for disposable caches.
// Returns ~/.cache/mlidb by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// ReconcileCacheDir returns the directory of the remote response cache.
func ReconcileCacheDir(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "reconcile")
}
