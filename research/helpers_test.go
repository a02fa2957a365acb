package research

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"deepresearch/config"
	"deepresearch/ui"
)

var fixedNow = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func newTestConsole() (*ui.Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return ui.NewConsole(&buf, ui.WithClock(func() time.Time { return fixedNow })), &buf
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ProjectEndpoint:                 "https://example.services.ai.azure.com/api/projects/demo",
		APIVersion:                      config.DefaultAPIVersion,
		ModelDeploymentName:             "gpt-4o",
		DeepResearchModelDeploymentName: "o3-deep-research",
		BingConnectionID:                "/subscriptions/sub/connections/bing",
		AgentName:                       config.DefaultAgentName,
		AgentInstructions:               config.DefaultAgentInstructions,
		Mode:                            ModeSync,
		PollInterval:                    0,
		HeartbeatEvery:                  config.DefaultHeartbeatEvery,
		SummaryPath:                     filepath.Join(t.TempDir(), config.DefaultSummaryPath),
	}
}

// countLines counts output lines containing substr.
func countLines(out, substr string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}
