package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the mx configuration loaded from ~/.mx/config.yaml.
type Config struct {
	WorkspaceRoot   string   `yaml:"workspace_root"`
	AdditionalRoots []string `yaml:"additional_roots"`
	CacheDir        string   `yaml:"cache_dir"`
}

// ConfigDir returns the mx configuration directory (~/.mx/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mx")
	}
	return filepath.Join(home, ".mx")
}

// Load reads the mx config from ~/.mx/config.yaml.
// If the file does not exist, it returns an empty Config with no error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads the mx config from the given path.
// If the file does not exist, it returns an empty Config with no error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveWorkspaceRoot returns the configured workspace root, defaulting to
// the process working directory.
func (c *Config) ResolveWorkspaceRoot() string {
	if c.WorkspaceRoot != "" {
		return c.WorkspaceRoot
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolveCacheDir returns the configured cache directory, defaulting to
// <workspace root>/.mx/cache.
func (c *Config) ResolveCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return filepath.Join(c.ResolveWorkspaceRoot(), ".mx", "cache")
}
