package provider

import (
	"testing"

	"deepresearch/config"
	"deepresearch/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		expectNil   bool
	}{
		{
			name: "azure agents provider",
			config: Config{
				Type:       ProviderTypeAzureAgents,
				BaseURL:    "https://example.services.ai.azure.com/api/projects/demo",
				APIVersion: "v1",
				Tokens:     StaticToken("test-token"),
			},
			expectError: false,
			expectNil:   false,
		},
		{
			name: "azure agents provider without endpoint",
			config: Config{
				Type:   ProviderTypeAzureAgents,
				Tokens: StaticToken("test-token"),
			},
			expectError: true,
			expectNil:   true,
		},
		{
			name: "azure agents provider without tokens",
			config: Config{
				Type:    ProviderTypeAzureAgents,
				BaseURL: "https://example.services.ai.azure.com/api/projects/demo",
			},
			expectError: true,
			expectNil:   true,
		},
		{
			name: "unknown provider type",
			config: Config{
				Type:    ProviderType("unknown"),
				BaseURL: "http://localhost",
			},
			expectError: true,
			expectNil:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.expectNil && provider != nil {
				t.Error("expected nil provider, got non-nil")
			}
			if !tt.expectNil && provider == nil {
				t.Error("expected non-nil provider, got nil")
			}

			if !tt.expectError && provider != nil {
				var _ model.AgentService = provider
			}
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	cfg := &config.Config{
		ProjectEndpoint: "https://example/api/projects/p",
		APIVersion:      "2025-05-15-preview",
		MaxRetries:      4,
		Token:           "static",
	}

	got := ConfigFromSettings(cfg)
	if got.Type != ProviderTypeAzureAgents {
		t.Errorf("expected type %s, got %s", ProviderTypeAzureAgents, got.Type)
	}
	if got.BaseURL != cfg.ProjectEndpoint || got.APIVersion != cfg.APIVersion || got.MaxRetries != 4 {
		t.Errorf("unexpected provider config: %+v", got)
	}
	if _, ok := got.Tokens.(StaticToken); !ok {
		t.Errorf("expected StaticToken, got %T", got.Tokens)
	}

	cfg.Token = ""
	cli, ok := ConfigFromSettings(cfg).Tokens.(*AzureCLIToken)
	if !ok {
		t.Fatalf("expected *AzureCLIToken, got %T", ConfigFromSettings(cfg).Tokens)
	}
	if cli.Resource != DefaultTokenResource {
		t.Errorf("expected resource %s, got %s", DefaultTokenResource, cli.Resource)
	}
}

func TestNewProviderErrorReturnsNilInterface(t *testing.T) {
	svc, err := NewProvider(Config{Type: ProviderTypeAzureAgents})
	if err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if svc != nil {
		t.Fatalf("expected nil AgentService, got %#v", svc)
	}
}
