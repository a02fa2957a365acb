package research

import (
	"fmt"
	"os"
	"strings"

	"deepresearch/model"
	"deepresearch/ui"
)

// ReferencesHeading introduces the citation list of a summary document.
const ReferencesHeading = "## References"

// FormatSummary renders a message as a Markdown document: trimmed text
// segments separated by one blank line, followed by a References list of
// deduplicated citations when there are any.
func FormatSummary(msg *model.Message) string {
	parts := make([]string, 0, len(msg.TextSegments))
	for _, seg := range msg.TextSegments {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n\n"))

	refs := DedupeCitations(msg.Citations)
	if len(refs) > 0 {
		b.WriteString("\n\n" + ReferencesHeading + "\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "- [%s](%s)\n", ref.Label(), ref.URL)
		}
	}

	return b.String()
}

// SummaryWriter persists the final agent message.
type SummaryWriter struct {
	console *ui.Console
}

func NewSummaryWriter(console *ui.Console) *SummaryWriter {
	return &SummaryWriter{console: console}
}

// Write overwrites path with the formatted summary of msg and reports whether
// a file was written. A nil message is a legitimate empty outcome: it logs a
// warning and writes nothing.
func (w *SummaryWriter) Write(msg *model.Message, path string) (bool, error) {
	if msg == nil {
		w.console.Warnf("No message content provided, cannot create research summary.")
		return false, nil
	}

	if err := os.WriteFile(path, []byte(FormatSummary(msg)), 0644); err != nil {
		return false, fmt.Errorf("failed to write research summary: %w", err)
	}

	w.console.Println(fmt.Sprintf("Research summary written to '%s'.", path))
	return true, nil
}
