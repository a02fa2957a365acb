package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepresearch/config"
	"deepresearch/model"
	"deepresearch/research/testutil"
)

var projectConnections = []model.Connection{
	{ID: "/subscriptions/sub/connections/storage", Name: "blobstore", Type: "AzureBlob"},
	{ID: "/subscriptions/sub/connections/bing-west", Name: "bing-search-west", Type: "ApiKey"},
	{ID: "/subscriptions/sub/connections/bing-east", Name: "bing-search-east", Type: "ApiKey"},
}

func TestResolveConnectionConfiguredID(t *testing.T) {
	cfg := newTestConfig(t)
	svc := testutil.NewMockAgentService()
	console, buf := newTestConsole()

	id, err := NewRunner(cfg, svc, SyncScheduler{}, console).ResolveConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.BingConnectionID, id)
	assert.Zero(t, svc.Calls("ListConnections"))
	assert.Contains(t, buf.String(), "Using Bing connection ID from configuration")
}

func TestResolveConnectionByName(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.BingConnectionID = ""
	cfg.BingResourceName = "bing-search-east"

	svc := testutil.NewMockAgentService()
	svc.ListConnectionsFunc = func(ctx context.Context) ([]model.Connection, error) {
		return projectConnections, nil
	}
	console, buf := newTestConsole()

	id, err := NewRunner(cfg, svc, AsyncScheduler{}, console).ResolveConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/subscriptions/sub/connections/bing-east", id)
	assert.Contains(t, buf.String(), "Resolved Bing connection: /subscriptions/sub/connections/bing-east")
}

func TestResolveConnectionNotFound(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.BingConnectionID = ""
	cfg.BingResourceName = "bing-search"

	svc := testutil.NewMockAgentService()
	svc.ListConnectionsFunc = func(ctx context.Context) ([]model.Connection, error) {
		return projectConnections, nil
	}
	console, buf := newTestConsole()

	_, err := NewRunner(cfg, svc, SyncScheduler{}, console).Run(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrConnectionNotFound)
	assert.Zero(t, svc.Calls("CreateAgent"))
	assert.Zero(t, svc.Calls("DeleteAgent"))

	out := buf.String()
	assert.Contains(t, out, "Bing connection 'bing-search' was not found")
	assert.Contains(t, out, "Did you mean:")
	assert.Contains(t, out, "bing-search-west")
	assert.Contains(t, out, config.EnvBingConnectionID)
}

func TestResolveConnectionLookupFails(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.BingConnectionID = ""
	cfg.BingResourceName = "bing-search-east"

	denied := errors.New("403 Forbidden")
	svc := testutil.NewMockAgentService()
	svc.ListConnectionsFunc = func(ctx context.Context) ([]model.Connection, error) {
		return nil, denied
	}
	console, buf := newTestConsole()

	_, err := NewRunner(cfg, svc, SyncScheduler{}, console).ResolveConnection(context.Background())
	require.ErrorIs(t, err, ErrConnectionLookup)
	require.ErrorIs(t, err, denied)
	assert.Contains(t, buf.String(), "Failed to look up connections automatically: 403 Forbidden")
}

func TestResolveConnectionRequiresSetting(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.BingConnectionID = ""
	svc := testutil.NewMockAgentService()
	console, _ := newTestConsole()

	_, err := NewRunner(cfg, svc, SyncScheduler{}, console).ResolveConnection(context.Background())
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvBingConnectionID, cfgErr.EnvVar)
	assert.Zero(t, svc.Calls("ListConnections"))
}

func TestSuggestConnections(t *testing.T) {
	assert.Empty(t, SuggestConnections(nil, "bing"))
	assert.Empty(t, SuggestConnections(projectConnections, "zzz"))

	got := SuggestConnections(projectConnections, "bing")
	assert.ElementsMatch(t, []string{"bing-search-west", "bing-search-east"}, got)

	many := make([]model.Connection, 0, 6)
	for _, n := range []string{"bing-a", "bing-b", "bing-c", "bing-d", "bing-e"} {
		many = append(many, model.Connection{Name: n})
	}
	assert.Len(t, SuggestConnections(many, "bing"), maxSuggestions)
}

func TestFindConnectionExactMatchOnly(t *testing.T) {
	_, ok := FindConnection(projectConnections, "bing-search")
	assert.False(t, ok)

	c, ok := FindConnection(projectConnections, "blobstore")
	require.True(t, ok)
	assert.Equal(t, "AzureBlob", c.Type)
}
