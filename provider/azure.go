package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"deepresearch/config"
	"deepresearch/model"
)

// messagePageSize is the page size used when scanning a thread for the latest
// message of a role.
const messagePageSize = 20

// AzureAgentsProvider implements model.AgentService against the Azure AI
// Foundry Agents REST API.
type AzureAgentsProvider struct {
	client     openai.Client
	baseURL    string
	apiVersion string
	tokens     TokenSource
}

// NewAzureAgentsProvider creates a client for a project endpoint.
//
// Parameters:
//   - baseURL: project endpoint (required)
//   - apiVersion: api-version query value (default: "v1")
//   - maxRetries: transport retries per request for 408/409/429/5xx
//   - tokens: bearer token source (required)
func NewAzureAgentsProvider(baseURL, apiVersion string, maxRetries int, tokens TokenSource) (*AzureAgentsProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("project endpoint is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid project endpoint: %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if apiVersion == "" {
		apiVersion = config.DefaultAPIVersion
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	p := &AzureAgentsProvider{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		apiVersion: apiVersion,
		tokens:     tokens,
	}

	p.client = openai.NewClient(
		option.WithBaseURL(p.baseURL),
		option.WithQuery("api-version", apiVersion),
		option.WithMaxRetries(maxRetries),
		option.WithMiddleware(p.authorize),
	)

	return p, nil
}

// authorize injects a fresh bearer token on every attempt and writes a
// request line to the debug log.
func (p *AzureAgentsProvider) authorize(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	token, err := p.tokens.Token(req.Context())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := next(req)
	if err != nil {
		config.Debugf("[agents] %s %s failed after %v: %v", req.Method, req.URL.Path, time.Since(start), err)
		return resp, err
	}
	config.Debugf("[agents] %s %s -> %d (%v)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func (p *AzureAgentsProvider) get(ctx context.Context, path string, out any, opts ...option.RequestOption) error {
	var raw []byte
	if err := p.client.Get(ctx, path, nil, &raw, opts...); err != nil {
		return err
	}
	return decode(raw, out)
}

func (p *AzureAgentsProvider) post(ctx context.Context, path string, body any, out any) error {
	var raw []byte
	if err := p.client.Post(ctx, path, body, &raw); err != nil {
		return err
	}
	return decode(raw, out)
}

func decode(raw []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CreateAgent implements model.AgentService.
func (p *AzureAgentsProvider) CreateAgent(ctx context.Context, spec model.AgentSpec) (*model.Agent, error) {
	req := wireCreateAgentRequest{
		Model:        spec.Model,
		Name:         spec.Name,
		Instructions: spec.Instructions,
		Tools:        ConvertToWireTools(spec.Tools),
	}

	var resp wireAgent
	if err := p.post(ctx, "assistants", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &model.Agent{ID: resp.ID, Name: resp.Name, Model: resp.Model}, nil
}

// DeleteAgent implements model.AgentService.
func (p *AzureAgentsProvider) DeleteAgent(ctx context.Context, agentID string) error {
	var raw []byte
	if err := p.client.Delete(ctx, "assistants/"+url.PathEscape(agentID), nil, &raw); err != nil {
		return fmt.Errorf("failed to delete agent %s: %w", agentID, err)
	}
	return nil
}

// CreateThread implements model.AgentService.
func (p *AzureAgentsProvider) CreateThread(ctx context.Context) (*model.Thread, error) {
	var resp wireThread
	if err := p.post(ctx, "threads", map[string]any{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return &model.Thread{ID: resp.ID}, nil
}

// CreateMessage implements model.AgentService.
func (p *AzureAgentsProvider) CreateMessage(ctx context.Context, threadID string, role model.Role, content string) (*model.Message, error) {
	req := wireCreateMessageRequest{Role: string(role), Content: content}

	var resp wireMessage
	if err := p.post(ctx, threadPath(threadID, "messages"), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return ConvertFromWireMessage(resp), nil
}

// CreateRun implements model.AgentService.
func (p *AzureAgentsProvider) CreateRun(ctx context.Context, threadID, agentID string) (*model.Run, error) {
	req := wireCreateRunRequest{AssistantID: agentID}

	var resp wireRun
	if err := p.post(ctx, threadPath(threadID, "runs"), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return ConvertFromWireRun(resp), nil
}

// GetRun implements model.AgentService.
func (p *AzureAgentsProvider) GetRun(ctx context.Context, threadID, runID string) (*model.Run, error) {
	var resp wireRun
	if err := p.get(ctx, threadPath(threadID, "runs", runID), &resp); err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return ConvertFromWireRun(resp), nil
}

// GetLastMessageByRole implements model.AgentService. Messages are listed
// newest first and scanned page by page until one with the role is found.
func (p *AzureAgentsProvider) GetLastMessageByRole(ctx context.Context, threadID string, role model.Role) (*model.Message, error) {
	after := ""
	for {
		opts := []option.RequestOption{
			option.WithQuery("order", "desc"),
			option.WithQuery("limit", strconv.Itoa(messagePageSize)),
		}
		if after != "" {
			opts = append(opts, option.WithQuery("after", after))
		}

		var page wireMessageList
		if err := p.get(ctx, threadPath(threadID, "messages"), &page, opts...); err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range page.Data {
			if model.Role(m.Role) == role {
				return ConvertFromWireMessage(m), nil
			}
		}

		if !page.HasMore || page.LastID == "" || page.LastID == after {
			return nil, nil
		}
		after = page.LastID
	}
}

// ListConnections implements model.AgentService, following nextLink pages.
func (p *AzureAgentsProvider) ListConnections(ctx context.Context) ([]model.Connection, error) {
	var connections []model.Connection
	path := "connections"
	for path != "" {
		var page wireConnectionList
		if err := p.get(ctx, path, &page); err != nil {
			return nil, fmt.Errorf("failed to list connections: %w", err)
		}
		for _, c := range page.Value {
			connections = append(connections, model.Connection{ID: c.ID, Name: c.Name, Type: c.Type})
		}
		path = page.NextLink
	}
	return connections, nil
}

func threadPath(threadID string, parts ...string) string {
	segments := []string{"threads", url.PathEscape(threadID)}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "/")
}
