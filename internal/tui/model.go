package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quizrag/internal/service"
)

const (
	modePrompt  = "Quiz or Explanation (or 'exit'): "
	queryPrompt = "Enter query (or 'exit'): "
)

// Asker is the TUI-facing subset of the session service.
type Asker interface {
	Ask(ctx context.Context, mode service.Mode, query string) (string, error)
}

type stage int

const (
	stageMode stage = iota
	stageQuery
	stageWaiting
)

type answerMsg struct {
	text string
	err  error
}

// Model is the Bubble Tea model for the quiz/explanation loop.
type Model struct {
	ctx      context.Context
	asker    Asker
	overview string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	stage    stage
	mode     service.Mode
	query    string
	status   string
	answered bool
	ready    bool
	quitting bool
	err      error
}

// New creates a model that asks asker, showing overview in the header.
func New(ctx context.Context, asker Asker, overview string) Model {
	ti := textinput.New()
	ti.Prompt = modePrompt
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return Model{
		ctx:      ctx,
		asker:    asker,
		overview: overview,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Type quiz or explanation and press Enter.",
	}
}

// Err is the error that ended the session, if any.
func (m Model) Err() error { return m.err }

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		headerLines := 1 + lipgloss.Height(m.overview)
		reserved := headerLines + 1 + qh + 1 // status + spacer
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		return m, nil

	case answerMsg:
		return m.handleAnswer(msg)

	case spinner.TickMsg:
		if m.stage != stageWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m.quit("")
		}
		if m.stage == stageWaiting {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			m.viewport.LineUp(1)
			return m, nil
		case tea.KeyDown:
			m.viewport.LineDown(1)
			return m, nil
		case tea.KeyPgUp:
			m.viewport.ViewUp()
			return m, nil
		case tea.KeyPgDown:
			m.viewport.ViewDown()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	lower := strings.ToLower(value)
	if lower == "exit" || lower == "quit" {
		return m.quit("")
	}

	if m.stage == stageMode {
		mode, err := service.ParseMode(lower)
		if err != nil {
			return m.quit("Unknown command")
		}
		m.mode = mode
		m.stage = stageQuery
		m.input.Prompt = queryPrompt
		m.status = fmt.Sprintf("Mode: %s", mode)
		return m, nil
	}

	m.query = value
	m.stage = stageWaiting
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, m.ask(m.mode, value))
}

func (m Model) ask(mode service.Mode, query string) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		text, err := asker.Ask(ctx, mode, query)
		return answerMsg{text: text, err: err}
	}
}

func (m Model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, service.ErrNoContext):
		return m.quit("No relevant content found for that query.")
	case msg.err != nil:
		m.err = msg.err
		return m.quit("Error: " + msg.err.Error())
	}
	m.answered = true
	m.viewport.SetContent(msg.text)
	m.viewport.GotoTop()
	m.stage = stageMode
	m.input.Prompt = modePrompt
	m.status = fmt.Sprintf("%s for %q", titleFor(m.mode), m.query)
	return m, nil
}

func (m Model) quit(status string) (tea.Model, tea.Cmd) {
	m.quitting = true
	m.status = status
	return m, tea.Quit
}

func titleFor(mode service.Mode) string {
	if mode == service.ModeQuiz {
		return "Quiz"
	}
	return "Explanation"
}

// View renders the header, the last answer, the prompt and the status line.
func (m Model) View() string {
	if m.quitting {
		if m.status == "" {
			return ""
		}
		return m.status + "\n"
	}
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Quiz RAG")
	overview := overviewStyle.Render(m.overview)
	body := "Ask for a quiz or an explanation of the indexed documents."
	if m.answered {
		body = m.viewport.View()
	}
	results := resultBoxStyle.Render(body)
	var prompt string
	if m.stage == stageWaiting {
		prompt = queryBoxStyle.Render(fmt.Sprintf("%s Generating %s...", m.spinner.View(), strings.ToLower(titleFor(m.mode))))
	} else {
		prompt = queryBoxStyle.Render(m.input.View())
	}
	status := statusStyle.Render(m.status)
	return header + "\n" + overview + "\n" + results + "\n" + prompt + "\n" + status
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	overviewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
