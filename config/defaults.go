package config

const (
	DefaultAPIVersion        = "v1"
	DefaultAgentName         = "my-agent"
	DefaultAgentInstructions = "You are a helpful Agent that assists in researching scientific topics."
	DefaultSummaryPath       = "research_summary.md"
	DefaultPollInterval      = "1s"
	DefaultHeartbeatEvery    = 10
	DefaultMaxRetries        = 2
	DefaultMode              = "sync"
	DefaultEnvFile           = ".env"
)

func DefaultSettings() *Settings {
	return &Settings{
		Project: ProjectSettings{
			APIVersion: DefaultAPIVersion,
			MaxRetries: DefaultMaxRetries,
		},
		Agent: AgentSettings{
			Name:         DefaultAgentName,
			Instructions: DefaultAgentInstructions,
		},
		Polling: PollingSettings{
			Mode:           DefaultMode,
			Interval:       DefaultPollInterval,
			HeartbeatEvery: DefaultHeartbeatEvery,
		},
		Output: OutputSettings{
			SummaryPath:   DefaultSummaryPath,
			DataDirectory: GetDefaultDataDir(),
			History:       true,
		},
	}
}

func GenerateSettingsTemplate() string {
	return `# deepresearch configuration
# Location: ~/.config/deepresearch/settings.toml
# This file uses TOML format: https://toml.io
# Environment variables (and a .env file in the working directory) override these values.

[project]
# Azure AI Foundry project endpoint (PROJECT_ENDPOINT)
# Example: https://<resource>.services.ai.azure.com/api/projects/<project>
endpoint = ""
api_version = "v1"
# Transport retries per request
max_retries = 2

[models]
# Deployment name of the arbitration model (MODEL_DEPLOYMENT_NAME)
model_deployment_name = ""
# Deployment name of the Deep Research model (DEEP_RESEARCH_MODEL_DEPLOYMENT_NAME)
deep_research_model_deployment_name = ""

[bing]
# Full resource ID of the Bing grounding connection (BING_CONNECTION_ID).
# When empty, the connection named resource_name is looked up in the project.
connection_id = ""
resource_name = ""

[agent]
name = "my-agent"
instructions = "You are a helpful Agent that assists in researching scientific topics."

[polling]
# "sync" or "async"
mode = "sync"
interval = "1s"
# Print a timestamped progress line every N polls
heartbeat_every = 10

[output]
summary_path = "research_summary.md"
# Directory for the run history database and debug log
data_directory = "~/.local/share/deepresearch"
history = true
`
}
