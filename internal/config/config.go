package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up in the repository root.
const FileName = "postloop.toml"

type Config struct {
	Watch    WatchConfig    `toml:"watch"`
	Build    BuildConfig    `toml:"build"`
	Deploy   DeployConfig   `toml:"deploy"`
	Sync     SyncConfig     `toml:"sync"`
	Rollback RollbackConfig `toml:"rollback"`
	Log      LogConfig      `toml:"log"`
}

type WatchConfig struct {
	RepoPath string `toml:"repo_path"`
	Branch   string `toml:"branch"`
}

type BuildConfig struct {
	Command string `toml:"command"`
	// TimeoutSeconds bounds the build command; 0 means no limit.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DeployConfig selects the deployment mode. Command wins over file deployment,
// which wins over docker; see deploy.Deployer.
type DeployConfig struct {
	Command        string   `toml:"command"`
	TargetDir      string   `toml:"target_dir"`
	Artifacts      []string `toml:"artifacts"`
	Dockerfile     string   `toml:"dockerfile"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type SyncConfig struct {
	Enabled bool   `toml:"enabled"`
	Remote  string `toml:"remote"`
	Branch  string `toml:"branch"`
}

type RollbackConfig struct {
	Enabled      bool `toml:"enabled"`
	KeepVersions int  `toml:"keep_versions"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Default returns the configuration written by `postloop init`.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{RepoPath: ".", Branch: "main"},
		Build: BuildConfig{Command: "go build -o bin/app ./..."},
		Deploy: DeployConfig{
			TargetDir: "/opt/deploy",
			Artifacts: []string{"bin/app"},
		},
		Sync:     SyncConfig{Enabled: true, Remote: "origin", Branch: "main"},
		Rollback: RollbackConfig{Enabled: true, KeepVersions: 3},
		Log:      LogConfig{File: "postloop.log", Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
