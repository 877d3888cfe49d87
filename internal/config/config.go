package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the lualens configuration.
type Config struct {
	Deny   DenyConfig   `yaml:"deny"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
}

// DenyConfig lists value paths the profiler must not search or instrument.
type DenyConfig struct {
	Paths []string `yaml:"paths"`
}

// StoreConfig controls where profiling sessions are persisted.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Deny: DenyConfig{
			Paths: []string{
				"_G",
				"package.loaded",
				"package.loaders",
			},
		},
		Store: StoreConfig{
			Dir: ".",
		},
		Server: ServerConfig{
			Port: 4173,
		},
	}
}

// Load reads configuration from file, falling back to defaults.
// If configPath is empty, it looks for lualens.yaml in the current directory.
func Load(configPath string) (*Config, error) {
	defaults := Default()

	if configPath == "" {
		configPath = "lualens.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file, use defaults
			return defaults, nil
		}
		return nil, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults.Merge(&fileCfg)
	return defaults, nil
}

// LoadFromDir loads configuration from the specified directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "lualens.yaml"))
}

// Merge combines another config into this one, with other taking precedence.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Deny.Paths) > 0 {
		c.Deny.Paths = other.Deny.Paths
	}
	if other.Store.Dir != "" {
		c.Store.Dir = other.Store.Dir
	}
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
}

// DenyPaths returns the configured deny paths split into key sequences.
// An entry like "package.loaded" becomes ["package", "loaded"].
func (c *Config) DenyPaths() [][]string {
	paths := make([][]string, 0, len(c.Deny.Paths))
	for _, p := range c.Deny.Paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, strings.Split(p, "."))
	}
	return paths
}
