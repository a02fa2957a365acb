package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment variable names read once at startup.
const (
	EnvProjectEndpoint        = "PROJECT_ENDPOINT"
	EnvModelDeployment        = "MODEL_DEPLOYMENT_NAME"
	EnvDeepResearchDeployment = "DEEP_RESEARCH_MODEL_DEPLOYMENT_NAME"
	EnvBingConnectionID       = "BING_CONNECTION_ID"
	EnvAzureBingConnectionID  = "AZURE_BING_CONNECTION_ID"
	EnvBingResourceName       = "BING_RESOURCE_NAME"
	EnvToken                  = "AZURE_AI_TOKEN"
	EnvDataDir                = "DEEPRESEARCH_DATA_DIR"
	EnvMode                   = "DEEPRESEARCH_MODE"
	EnvDebug                  = "DEEPRESEARCH_DEBUG"
)

// Config is the resolved configuration for one invocation. It is built once in
// main and passed to every component; nothing else reads the environment.
type Config struct {
	ProjectEndpoint string
	APIVersion      string
	Token           string
	MaxRetries      int

	ModelDeploymentName             string
	DeepResearchModelDeploymentName string
	BingConnectionID                string
	BingResourceName                string

	AgentName         string
	AgentInstructions string

	Mode           string
	PollInterval   time.Duration
	HeartbeatEvery int

	SummaryPath    string
	DataDirectory  string
	HistoryEnabled bool
}

var DebugLog *log.Logger

// ConfigError reports a missing or invalid setting.
type ConfigError struct {
	Setting string
	EnvVar  string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("configuration error: %s %s (set %s or %s in settings.toml)", e.Setting, e.Reason, e.EnvVar, e.Setting)
	}
	return fmt.Sprintf("configuration error: %s %s", e.Setting, e.Reason)
}

// LoadOptions controls where Load reads settings from.
type LoadOptions struct {
	// SettingsPath overrides the default settings.toml location.
	SettingsPath string
	// EnvFile is a dotenv file merged below the process environment. Missing files are ignored.
	EnvFile string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir(), "history.db")
}

// ConnectionConfigured reports whether a Bing connection can be resolved
// without further input.
func (c *Config) ConnectionConfigured() bool {
	return c.BingConnectionID != "" || c.BingResourceName != ""
}

// Validate checks that every setting needed before the first remote call is present.
func (c *Config) Validate() error {
	switch {
	case c.ProjectEndpoint == "":
		return &ConfigError{Setting: "project.endpoint", EnvVar: EnvProjectEndpoint, Reason: "is required"}
	case c.ModelDeploymentName == "":
		return &ConfigError{Setting: "models.model_deployment_name", EnvVar: EnvModelDeployment, Reason: "is required"}
	case c.DeepResearchModelDeploymentName == "":
		return &ConfigError{Setting: "models.deep_research_model_deployment_name", EnvVar: EnvDeepResearchDeployment, Reason: "is required"}
	case !c.ConnectionConfigured():
		return &ConfigError{Setting: "bing.connection_id", EnvVar: EnvBingConnectionID, Reason: "or bing.resource_name is required"}
	case c.PollInterval <= 0:
		return &ConfigError{Setting: "polling.interval", Reason: "must be positive"}
	case c.HeartbeatEvery <= 0:
		return &ConfigError{Setting: "polling.heartbeat_every", Reason: "must be positive"}
	case c.Mode != "sync" && c.Mode != "async":
		return &ConfigError{Setting: "polling.mode", EnvVar: EnvMode, Reason: fmt.Sprintf("must be \"sync\" or \"async\", got %q", c.Mode)}
	case c.SummaryPath == "":
		return &ConfigError{Setting: "output.summary_path", Reason: "must not be empty"}
	}
	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(EnvProjectEndpoint); v != "" {
		c.ProjectEndpoint = v
	}
	if v := getenv(EnvModelDeployment); v != "" {
		c.ModelDeploymentName = v
	}
	if v := getenv(EnvDeepResearchDeployment); v != "" {
		c.DeepResearchModelDeploymentName = v
	}
	if v := strings.TrimSpace(getenv(EnvAzureBingConnectionID)); v != "" {
		c.BingConnectionID = v
	}
	if v := strings.TrimSpace(getenv(EnvBingConnectionID)); v != "" {
		c.BingConnectionID = v
	}
	if v := getenv(EnvBingResourceName); v != "" {
		c.BingResourceName = v
	}
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := getenv(EnvDataDir); v != "" {
		c.DataDirectory = v
	}
	if v := getenv(EnvMode); v != "" {
		c.Mode = v
	}
}

func (c *Config) applySettings(s *Settings) error {
	c.ProjectEndpoint = s.Project.Endpoint
	c.APIVersion = s.Project.APIVersion
	c.MaxRetries = s.Project.MaxRetries
	c.ModelDeploymentName = s.Models.ModelDeploymentName
	c.DeepResearchModelDeploymentName = s.Models.DeepResearchModelDeploymentName
	c.BingConnectionID = strings.TrimSpace(s.Bing.ConnectionID)
	c.BingResourceName = s.Bing.ResourceName
	c.AgentName = s.Agent.Name
	c.AgentInstructions = s.Agent.Instructions
	c.Mode = s.Polling.Mode
	c.HeartbeatEvery = s.Polling.HeartbeatEvery
	c.SummaryPath = s.Output.SummaryPath
	c.DataDirectory = s.Output.DataDirectory
	c.HistoryEnabled = s.Output.History

	interval, err := time.ParseDuration(s.Polling.Interval)
	if err != nil {
		return &ConfigError{Setting: "polling.interval", Reason: fmt.Sprintf("is not a duration: %v", err)}
	}
	c.PollInterval = interval
	return nil
}

func CheckDebug(getenv func(string) string) bool {
	debug := getenv(EnvDebug)
	if b, err := strconv.ParseBool(debug); err == nil {
		return b
	}
	return false
}

func InitDebugLog(dataDir string, getenv func(string) string) {
	if !CheckDebug(getenv) {
		return
	}

	if err := EnsureDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create data directory %s: %v\n", dataDir, err)
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: request logs carry thread and run identifiers
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (%s=%s) ===", EnvDebug, getenv(EnvDebug))
	DebugLog.Printf("Log path: %s", logPath)
}

// Debugf writes to the debug log when it is enabled.
func Debugf(format string, args ...any) {
	if DebugLog != nil {
		DebugLog.Printf(format, args...)
	}
}

// Load builds the configuration from defaults, the settings file, an optional
// dotenv file and the environment, in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		settingsPath = GetSettingsFilePath()
	}

	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := &Config{}
	if err := cfg.applySettings(settings); err != nil {
		return nil, err
	}

	dotenv, err := LoadEnvFile(opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	cfg.applyEnvOverrides(lookup)

	return cfg, nil
}
