package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"deepresearch/config"
	"deepresearch/model"
)

var (
	// ErrConnectionNotFound is returned when no project connection has the configured resource name.
	ErrConnectionNotFound = errors.New("bing connection not found")
	// ErrConnectionLookup is returned when project connections cannot be listed.
	ErrConnectionLookup = errors.New("failed to look up bing connection")
)

// maxSuggestions caps the "did you mean" list for an unknown resource name.
const maxSuggestions = 3

// ResolveConnection returns the Bing grounding connection ID. A configured ID
// is used as is; otherwise the project's connections are listed and the one
// named after the configured resource is used.
func (r *Runner) ResolveConnection(ctx context.Context) (string, error) {
	if r.cfg.BingConnectionID != "" {
		r.console.Logf("Using Bing connection ID from configuration: %s", r.cfg.BingConnectionID)
		return r.cfg.BingConnectionID, nil
	}

	name := r.cfg.BingResourceName
	if name == "" {
		return "", &config.ConfigError{Setting: "bing.connection_id", EnvVar: config.EnvBingConnectionID, Reason: "or bing.resource_name is required"}
	}

	r.console.Logf("%s is not set; looking up connection %q in the project...", config.EnvBingConnectionID, name)

	connections, err := call(ctx, r.sched, func(ctx context.Context) ([]model.Connection, error) {
		return r.service.ListConnections(ctx)
	})
	if err != nil {
		r.console.Errorf("Failed to look up connections automatically: %v", err)
		r.printConnectionGuidance(name)
		return "", fmt.Errorf("%w: %w", ErrConnectionLookup, err)
	}

	if conn, ok := FindConnection(connections, name); ok {
		r.console.Logf("Resolved Bing connection: %s", conn.ID)
		return conn.ID, nil
	}

	r.console.Errorf("Bing connection '%s' was not found", name)
	if suggestions := SuggestConnections(connections, name); len(suggestions) > 0 {
		r.console.Logf("Did you mean: %s?", strings.Join(suggestions, ", "))
	}
	r.printConnectionGuidance(name)
	return "", fmt.Errorf("%w: %q", ErrConnectionNotFound, name)
}

func (r *Runner) printConnectionGuidance(name string) {
	r.console.Logf("Copy the connection ID from the Azure AI Foundry portal and set %s (or bing.connection_id in settings.toml)", config.EnvBingConnectionID)
	r.console.Logf("Management Center -> Connected resources -> %s -> copy the full resource ID", name)
}

// FindConnection returns the connection whose name equals name exactly.
func FindConnection(connections []model.Connection, name string) (model.Connection, bool) {
	for _, c := range connections {
		if c.Name == name {
			return c, true
		}
	}
	return model.Connection{}, false
}

// SuggestConnections returns the connection names that fuzzily match name, best first.
func SuggestConnections(connections []model.Connection, name string) []string {
	targets := make([]string, len(connections))
	for i, c := range connections {
		targets[i] = c.Name
	}

	matches := fuzzy.Find(name, targets)
	suggestions := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}
