package ui

import (
	"os"
	"regexp"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/atotto/clipboard"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/term"

	"deepresearch/config"
)

const defaultPreviewWidth = 100

var mdLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)

// RenderMarkdown renders a Markdown document for the terminal.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = defaultPreviewWidth
	}
	startTime := time.Now()

	// Autolink stays off so URLs remain plain text the terminal can detect
	defaultExt := markdown.Extensions()
	customExt := defaultExt &^ parser.Autolink
	p := parser.NewWithExtensions(customExt)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(preprocessLinks(content)))
	rendered := gomarkdown.Render(doc, r)

	config.Debugf("Markdown rendered in %v", time.Since(startTime))
	return string(rendered)
}

// preprocessLinks rewrites [title](url) as "title (url)" so reference lists
// keep both parts once rendered.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$1 ($2)")
}

// Preview prints the rendered document below a rule sized to the terminal.
func (c *Console) Preview(content string) {
	width := defaultPreviewWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 4 {
		width = w - 4
	}
	c.Println(c.render(TitleStyle, "Research summary preview:"))
	c.Printf("%s\n", RenderMarkdown(content, width))
}

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}
