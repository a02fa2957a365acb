// Package provider implements model.AgentService against remote agent services.
//
// The research workflow only depends on model.AgentService, so the transport
// and wire formats stay isolated here. Azure AI Foundry Agents exposes an
// Assistants-style REST API (assistants, threads, messages, runs); the
// provider talks to it through the openai-go client used as a generic REST
// transport, which also gives us its retry and backoff behavior.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:       provider.ProviderTypeAzureAgents,
//	    BaseURL:    "https://<resource>.services.ai.azure.com/api/projects/<project>",
//	    APIVersion: "v1",
//	    Tokens:     provider.StaticToken(token),
//	})
//	if err != nil {
//	    // handle error
//	}
//	run, err := p.CreateRun(ctx, threadID, agentID)
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeAzureAgents ProviderType = "azure-agents"
)

// Config holds provider-specific configuration.
type Config struct {
	Type       ProviderType
	BaseURL    string
	APIVersion string
	MaxRetries int
	Tokens     TokenSource
}
