package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"deepresearch/storage"
)

const (
	historyPromptWidth = 48
	historyStatusWidth = 12
)

// FormatHistory renders past runs as an aligned table, one row per run.
func FormatHistory(records []storage.RunRecord) string {
	if len(records) == 0 {
		return "No research runs recorded yet.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-19s  %s  %s  %8s  %s\n",
		"STARTED", pad("STATUS", historyStatusWidth), pad("PROMPT", historyPromptWidth), "DURATION", "SUMMARY")

	for _, rec := range records {
		status := rec.Status
		if status == "" {
			status = "error"
		}

		prompt := strings.Join(strings.Fields(rec.Prompt), " ")
		if runewidth.StringWidth(prompt) > historyPromptWidth {
			prompt = runewidth.Truncate(prompt, historyPromptWidth, "...")
		}

		summary := rec.SummaryPath
		if summary == "" {
			summary = "-"
		}

		fmt.Fprintf(&b, "%-19s  %s  %s  %8s  %s\n",
			rec.StartedAt.Local().Format(TimestampLayout),
			pad(status, historyStatusWidth),
			pad(prompt, historyPromptWidth),
			rec.Duration().Round(time.Second),
			summary,
		)
	}

	return b.String()
}

// pad right-pads s to width display cells.
func pad(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
