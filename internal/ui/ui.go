// Package ui provides terminal output for indexing progress and status
// display.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage represents an indexing stage.
type Stage int

const (
	// StageCollecting is the source discovery stage (link lists, files).
	StageCollecting Stage = iota
	// StageFetching is the web page download stage.
	StageFetching
	// StageEmbedding is the embedding generation stage.
	StageEmbedding
	// StagePersisting is the store write stage.
	StagePersisting
	// StageComplete indicates indexing is complete.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageCollecting:
		return "Collecting"
	case StageFetching:
		return "Fetching"
	case StageEmbedding:
		return "Embedding"
	case StagePersisting:
		return "Persisting"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage tag for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageCollecting:
		return "SCAN"
	case StageFetching:
		return "FETCH"
	case StageEmbedding:
		return "EMBED"
	case StagePersisting:
		return "STORE"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Stage   Stage
	Current int
	Total   int
	Source  string
	Message string
}

// ErrorEvent represents an error during processing.
type ErrorEvent struct {
	Source string
	Err    error
	IsWarn bool
}

// CompletionStats contains final indexing statistics.
type CompletionStats struct {
	Indexed  int
	Skipped  int
	Failed   int
	Duration time.Duration
	Model    string
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// UpdateProgress updates the progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to the display.
	AddError(event ErrorEvent)

	// Complete renders the run summary.
	Complete(stats CompletionStats)
}

// Config configures the renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// NewRenderer picks a renderer for the environment: styled output on an
// interactive terminal, plain text for pipes and CI.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}
	return NewStyledRenderer(cfg)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
