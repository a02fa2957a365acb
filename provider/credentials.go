package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultTokenResource is the audience of Azure AI Foundry project tokens.
const DefaultTokenResource = "https://ai.azure.com"

// Refresh tokens this long before they expire.
const tokenRefreshSkew = 5 * time.Minute

// TokenSource supplies bearer tokens for the agents API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a pre-acquired bearer token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("empty access token")
	}
	return string(t), nil
}

// AzureCLIToken obtains tokens from `az account get-access-token` and caches
// them until shortly before they expire.
type AzureCLIToken struct {
	Resource string

	mu      sync.Mutex
	token   string
	expires time.Time

	// run executes the az command; replaced in tests.
	run func(ctx context.Context, args ...string) ([]byte, error)
	now func() time.Time
}

func NewAzureCLIToken(resource string) *AzureCLIToken {
	return &AzureCLIToken{
		Resource: resource,
		run:      runAzureCLI,
		now:      time.Now,
	}
}

type azureCLITokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresOn   int64  `json:"expires_on"`
}

func (s *AzureCLIToken) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Add(tokenRefreshSkew).Before(s.expires) {
		return s.token, nil
	}

	out, err := s.run(ctx, "account", "get-access-token", "--resource", s.Resource, "--output", "json")
	if err != nil {
		return "", fmt.Errorf("failed to get access token from Azure CLI (run `az login`): %w", err)
	}

	var resp azureCLITokenResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", fmt.Errorf("failed to parse Azure CLI token response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("Azure CLI returned an empty access token")
	}

	s.token = resp.AccessToken
	if resp.ExpiresOn > 0 {
		s.expires = time.Unix(resp.ExpiresOn, 0)
	} else {
		// Older CLI versions omit expires_on
		s.expires = s.now().Add(30 * time.Minute)
	}

	return s.token, nil
}

func runAzureCLI(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "az", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}
