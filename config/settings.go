package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/subosito/gotenv"
)

type ProjectSettings struct {
	Endpoint   string `toml:"endpoint"`
	APIVersion string `toml:"api_version"`
	MaxRetries int    `toml:"max_retries"`
}

type ModelSettings struct {
	ModelDeploymentName             string `toml:"model_deployment_name"`
	DeepResearchModelDeploymentName string `toml:"deep_research_model_deployment_name"`
}

type BingSettings struct {
	ConnectionID string `toml:"connection_id"`
	ResourceName string `toml:"resource_name"`
}

type AgentSettings struct {
	Name         string `toml:"name"`
	Instructions string `toml:"instructions"`
}

type PollingSettings struct {
	Mode           string `toml:"mode"`
	Interval       string `toml:"interval"`
	HeartbeatEvery int    `toml:"heartbeat_every"`
}

type OutputSettings struct {
	SummaryPath   string `toml:"summary_path"`
	DataDirectory string `toml:"data_directory"`
	History       bool   `toml:"history"`
}

// Settings mirrors settings.toml.
type Settings struct {
	Project ProjectSettings `toml:"project"`
	Models  ModelSettings   `toml:"models"`
	Bing    BingSettings    `toml:"bing"`
	Agent   AgentSettings   `toml:"agent"`
	Polling PollingSettings `toml:"polling"`
	Output  OutputSettings  `toml:"output"`
}

// LoadSettings decodes the settings file over the defaults.
// A missing file is not an error: the defaults are returned unchanged.
func LoadSettings(path string) (*Settings, error) {
	cfg := DefaultSettings()

	if !FileExists(path) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 && DebugLog != nil {
		DebugLog.Printf("Ignoring unknown settings keys in %s: %v", path, undecoded)
	}

	return cfg, nil
}

// LoadEnvFile parses a dotenv file. Returns an empty map if path is empty or
// the file doesn't exist.
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" || !FileExists(path) {
		return map[string]string{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return env, nil
}

// CreateDefaultSettings writes the commented settings template to path.
// It refuses to overwrite an existing file unless force is set.
func CreateDefaultSettings(path string, force bool) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if FileExists(path) && !force {
		return fmt.Errorf("settings file already exists: %s", path)
	}

	content := GenerateSettingsTemplate()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}
