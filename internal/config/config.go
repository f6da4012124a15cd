package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	View    ViewConfig    `yaml:"view" json:"view"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Notices NoticesConfig `yaml:"notices" json:"notices"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type ViewConfig struct {
	PageSize      int    `yaml:"page_size" json:"page_size"`
	DefaultPreset string `yaml:"default_preset" json:"default_preset"`
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds" json:"ttl_seconds"`
	MaxEntries int `yaml:"max_entries" json:"max_entries"`
}

type StorageConfig struct {
	// Driver: "memory", "file", or "sqlite"
	Driver  string `yaml:"driver" json:"driver"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

type NoticesConfig struct {
	Keep int `yaml:"keep" json:"keep"`
}

func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		View:    ViewConfig{PageSize: 10, DefaultPreset: "all"},
		Cache:   CacheConfig{TTLSeconds: 300, MaxEntries: 256},
		Storage: StorageConfig{Driver: "memory", DataDir: "data"},
		Notices: NoticesConfig{Keep: 100},
	}
}

// Load reads a YAML config file. A missing path yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.View.PageSize < 1 {
		c.View.PageSize = d.View.PageSize
	}
	if c.View.DefaultPreset == "" {
		c.View.DefaultPreset = d.View.DefaultPreset
	}
	if c.Cache.TTLSeconds < 1 {
		c.Cache.TTLSeconds = d.Cache.TTLSeconds
	}
	if c.Cache.MaxEntries < 1 {
		c.Cache.MaxEntries = d.Cache.MaxEntries
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = d.Storage.DataDir
	}
	if c.Notices.Keep < 1 {
		c.Notices.Keep = d.Notices.Keep
	}
}
