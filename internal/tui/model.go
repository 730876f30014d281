// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Answerer is the TUI-facing subset of the QA engine.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
	SessionID() string
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle    = lipgloss.NewStyle()
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// exchange is one completed question/answer pair in the transcript.
type exchange struct {
	question string
	answer   string
}

// answerMsg carries the result of an asynchronous Answer call.
type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	engine    Answerer
	ctx       context.Context
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	history   []exchange
	status    string
	statusErr bool
	waiting   bool
	ready     bool
}

// New creates a chat model bound to the given engine.
func New(ctx context.Context, engine Answerer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		engine:   engine,
		ctx:      ctx,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   fmt.Sprintf("Session %s. Type to ask.", engine.SessionID()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header, input frame, status line
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			m.statusErr = false
			return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.statusErr = true
		} else {
			m.history = append(m.history, exchange{question: msg.question, answer: msg.answer})
			m.status = fmt.Sprintf("Session %s. Type to ask.", m.engine.SessionID())
			m.statusErr = false
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ragtime chat")
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := m.status
	if m.waiting {
		status = m.spinner.View() + " " + status
	}
	if m.statusErr {
		status = statusErrStyle.Render(status)
	} else {
		status = statusStyle.Render(status)
	}

	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// askCmd runs the engine call off the update loop.
func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.engine.Answer(m.ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No exchanges yet. Ask something about your indexed documents."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n")
		b.WriteString(answerStyle.Render(ex.answer))
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
