package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the configuration to ConfigDir.
func (c *Config) Save() error {
	dir := ConfigDir()
	if dir == "" {
		return os.ErrNotExist
	}
	return c.SaveTo(filepath.Join(dir, FileName))
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
