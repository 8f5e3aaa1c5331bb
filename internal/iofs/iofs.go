// Package iofs prepares the file system of the user: directories of
// mlidb, the default config.yaml and the lichen whitelist.
package iofs

import (
	_ "embed"
	"os"

	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var ConfigYAML string

//go:embed whitelist.yaml
var WhitelistYAML string

// EnsureDirs creates config, data, log and cache directories.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.DataDir(homeDir),
		config.LogDir(homeDir),
		config.CacheDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the default config.yaml unless it exists.
func EnsureConfigFile(homeDir string) error {
	return ensureFile(config.ConfigFilePath(homeDir), ConfigYAML)
}

// EnsureWhitelistFile writes the default whitelist.yaml unless it
// exists.
func EnsureWhitelistFile(homeDir string) error {
	return ensureFile(config.WhitelistFilePath(homeDir), WhitelistYAML)
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return CopyFileError(path, err)
	}

	return nil
}

// LoadWhitelist reads the whitelist of the user. Without a user file the
// embedded default is used.
func LoadWhitelist(homeDir string) (reconcile.Whitelist, error) {
	var res reconcile.Whitelist
	path := config.WhitelistFilePath(homeDir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data = []byte(WhitelistYAML)
	} else if err != nil {
		return res, ReadFileError(path, err)
	}

	if err = yaml.Unmarshal(data, &res); err != nil {
		return res, ReadFileError(path, err)
	}
	if res.IsEmpty() {
		return res, EmptyWhitelistError(path)
	}
	return res, nil
}
