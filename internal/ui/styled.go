package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// StyledRenderer outputs colorized progress for interactive terminals.
type StyledRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
}

// NewStyledRenderer creates a lipgloss-styled renderer.
func NewStyledRenderer(cfg Config) *StyledRenderer {
	return &StyledRenderer{
		out:     cfg.Output,
		noColor: cfg.NoColor || DetectNoColor(),
	}
}

func (r *StyledRenderer) render(style lipgloss.Style, s string) string {
	if r.noColor {
		return s
	}
	return style.Render(s)
}

// UpdateProgress implements Renderer.
func (r *StyledRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := event.Message
	if msg == "" {
		msg = event.Source
	}

	tag := r.render(stageStyle, fmt.Sprintf("[%s]", event.Stage.Icon()))
	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "%s %d/%d %s\n", tag, event.Current, event.Total, r.render(sourceStyle, msg))
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "%s %s\n", tag, r.render(sourceStyle, msg))
	}
}

// AddError implements Renderer.
func (r *StyledRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prefix string
	if event.IsWarn {
		prefix = r.render(warnStyle, "WARN")
	} else {
		prefix = r.render(errorStyle, "ERROR")
	}
	if event.Source != "" {
		_, _ = fmt.Fprintf(r.out, "%s %s: %v\n", prefix, event.Source, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *StyledRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("Complete: %d indexed, %d skipped, %d failed in %s",
		stats.Indexed, stats.Skipped, stats.Failed, stats.Duration.Round(100*time.Millisecond))
	if stats.Model != "" {
		line += fmt.Sprintf(" (model: %s)", stats.Model)
	}
	_, _ = fmt.Fprintln(r.out, r.render(summaryStyle, line))
}
