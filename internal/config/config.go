package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	DefaultWatchIntervalMS = 2000
	DataDirName            = ".sketchvault"
)

// Config holds all sketchvault configuration.
type Config struct {
	BridgeBinary    string `json:"bridge_binary,omitempty"`
	BridgeToolsDir  string `json:"bridge_tools_dir,omitempty"`
	WatchIntervalMS int    `json:"watch_interval_ms,omitempty"`
	LogPath         string `json:"log_path,omitempty"`
	LastProfile     string `json:"last_profile,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		WatchIntervalMS: DefaultWatchIntervalMS,
	}
}

// Load reads and merges global and sketch-local configs.
// Order: defaults → global (~/.config/sketchvault/config.json) → sketch
// (<sketch>/.sketchvault/config.json).
func Load(sketchRoot string) Config {
	cfg := Defaults()

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".config", "sketchvault", "config.json")
		mergeFromFile(&cfg, globalPath)
	}

	if sketchRoot != "" {
		localPath := filepath.Join(sketchRoot, DataDirName, "config.json")
		mergeFromFile(&cfg, localPath)
	}

	return cfg
}

// Save writes the config to the sketch-local .sketchvault/config.json by
// default, or to the global config if global is true.
func Save(cfg Config, sketchRoot string, global bool) error {
	var dir string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", "sketchvault")
	} else {
		dir = filepath.Join(sketchRoot, DataDirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	if fileCfg.BridgeBinary != "" {
		cfg.BridgeBinary = fileCfg.BridgeBinary
	}
	if fileCfg.BridgeToolsDir != "" {
		cfg.BridgeToolsDir = fileCfg.BridgeToolsDir
	}
	if fileCfg.WatchIntervalMS != 0 {
		cfg.WatchIntervalMS = fileCfg.WatchIntervalMS
	}
	if fileCfg.LogPath != "" {
		cfg.LogPath = fileCfg.LogPath
	}
	if fileCfg.LastProfile != "" {
		cfg.LastProfile = fileCfg.LastProfile
	}
}
