// Package config loads the service configuration from an optional YAML
// file with environment overrides. Exchange credentials are never part
// of the file, they come from the environment only.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	PlatformBinance = "binance"
	PlatformBybit   = "bybit"

	commentsFileName = "comments.json"
	historyFileName  = "balance_history.json"
	snapshotDirName  = "wal/balance"
)

type Config struct {
	ListenAddr  string
	Platform    string
	DataDir     string
	TLSDomains  []string
	TLSCacheDir string
	Setup       bool
}

type ConfigTmp struct {
	ListenAddr  string   `yaml:"listen_addr,omitempty"`
	Platform    string   `yaml:"platform,omitempty"`
	DataDir     string   `yaml:"data_dir,omitempty"`
	TLSDomains  []string `yaml:"tls_domains,omitempty"`
	TLSCacheDir string   `yaml:"tls_cache_dir,omitempty"`
}

// Get parses flags, the optional YAML config and environment overrides.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	setup := flag.Bool("setup", false, "run the interactive config wizard and exit")
	flag.Parse()

	cfg := Config{
		ListenAddr: ":8080",
		Platform:   PlatformBinance,
		DataDir:    ".",
		Setup:      *setup,
	}

	if *configPath != "" {
		if err := loadYaml(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if cfg.Platform != PlatformBinance && cfg.Platform != PlatformBybit {
		return Config{}, fmt.Errorf("unsupported platform %q (expected %s or %s)",
			cfg.Platform, PlatformBinance, PlatformBybit)
	}

	return cfg, nil
}

// CommentsFile is the path of the persisted comment feed.
func (c Config) CommentsFile() string {
	return filepath.Join(c.DataDir, commentsFileName)
}

// HistoryFile is the path of the persisted balance history.
func (c Config) HistoryFile() string {
	return filepath.Join(c.DataDir, historyFileName)
}

// SnapshotDir is the directory of the balance snapshot journal.
func (c Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, snapshotDirName)
}

func loadYaml(path string, cfg *Config) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.Platform != "" {
		cfg.Platform = tmp.Platform
	}
	if tmp.DataDir != "" {
		cfg.DataDir = tmp.DataDir
	}
	cfg.TLSDomains = tmp.TLSDomains
	if tmp.TLSCacheDir != "" {
		cfg.TLSCacheDir = tmp.TLSCacheDir
	}

	return nil
}

// applyEnv lets deployments redirect the data dir (persistent volumes)
// and listen address without touching the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PLATFORM"); v != "" {
		cfg.Platform = v
	}
}
