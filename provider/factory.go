package provider

import (
	"fmt"

	"deepresearch/config"
	"deepresearch/model"
)

// NewProvider creates an agent service client based on configuration.
//
// Returns an error if the provider type is unknown or the provider-specific
// constructor fails (e.g., missing endpoint).
func NewProvider(cfg Config) (model.AgentService, error) {
	switch cfg.Type {
	case ProviderTypeAzureAgents:
		p, err := NewAzureAgentsProvider(cfg.BaseURL, cfg.APIVersion, cfg.MaxRetries, cfg.Tokens)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// ConfigFromSettings maps the application configuration to a provider
// configuration. A static token is used when one is configured, otherwise
// tokens come from the Azure CLI.
func ConfigFromSettings(cfg *config.Config) Config {
	var tokens TokenSource
	if cfg.Token != "" {
		tokens = StaticToken(cfg.Token)
	} else {
		tokens = NewAzureCLIToken(DefaultTokenResource)
	}

	return Config{
		Type:       ProviderTypeAzureAgents,
		BaseURL:    cfg.ProjectEndpoint,
		APIVersion: cfg.APIVersion,
		MaxRetries: cfg.MaxRetries,
		Tokens:     tokens,
	}
}
