package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// TimestampLayout is the layout of milestone line prefixes: [YYYY-MM-DD HH:MM:SS].
const TimestampLayout = "2006-01-02 15:04:05"

// Console writes the human-readable progress protocol: timestamped milestone
// lines, bare status lines and streamed agent responses.
type Console struct {
	out    io.Writer
	now    func() time.Time
	styled bool
}

// Option configures a Console.
type Option func(*Console)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

// WithStyles forces styling on or off.
func WithStyles(enabled bool) Option {
	return func(c *Console) {
		c.styled = enabled
	}
}

// NewConsole returns a console writing to out. Styling defaults to off.
func NewConsole(out io.Writer, opts ...Option) *Console {
	c := &Console{
		out: out,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStdoutConsole returns a console on os.Stdout, styled when stdout is a terminal.
func NewStdoutConsole() *Console {
	return NewConsole(os.Stdout, WithStyles(IsTerminal(os.Stdout)))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (c *Console) render(style lipgloss.Style, s string) string {
	if !c.styled {
		return s
	}
	return style.Render(s)
}

func (c *Console) stamp() string {
	return c.render(TimestampStyle, "["+c.now().Format(TimestampLayout)+"]")
}

// Logf prints a timestamped milestone line.
func (c *Console) Logf(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", c.stamp(), fmt.Sprintf(format, args...))
}

// Warnf prints a timestamped warning line.
func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", c.stamp(), c.render(WarningStyle, fmt.Sprintf(format, args...)))
}

// Successf prints a timestamped confirmation line.
func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", c.stamp(), c.render(SuccessStyle, fmt.Sprintf(format, args...)))
}

// Errorf prints a timestamped error line.
func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", c.stamp(), c.render(ErrorStyle, fmt.Sprintf(format, args...)))
}

// Println prints a bare line.
func (c *Console) Println(s string) {
	fmt.Fprintln(c.out, s)
}

// Printf prints bare formatted text.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Heading prints a bare heading line such as "Agent response:".
func (c *Console) Heading(s string) {
	fmt.Fprintln(c.out, c.render(HeadingStyle, s))
}

// Citation prints one live citation line.
func (c *Console) Citation(title, url string) {
	fmt.Fprintln(c.out, c.render(CitationStyle, fmt.Sprintf("URL Citation: [%s](%s)", title, url)))
}

// Styled reports whether ANSI styling is enabled.
func (c *Console) Styled() bool {
	return c.styled
}
