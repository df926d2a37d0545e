// Package tui provides an interactive question and answer terminal UI
// over the pipeline.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driving"
)

// Styles for the chat view.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().PaddingLeft(2)
	evidenceStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// exchange is one asked question with its outcome.
type exchange struct {
	question string
	result   domain.ChatResult
	err      error
}

// answerMsg carries a completed chat call back into the update loop.
type answerMsg struct {
	question string
	result   domain.ChatResult
	err      error
}

// App is the bubbletea model for the chat UI.
type App struct {
	pipeline driving.PipelineService
	ctx      context.Context
	topK     int

	input   textinput.Model
	spinner spinner.Model
	history []exchange
	waiting bool
	width   int
}

// NewApp creates the chat UI over a pipeline service.
func NewApp(pipeline driving.PipelineService, topK int) (*App, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("tui: pipeline service is required")
	}

	input := textinput.New()
	input.Placeholder = "Ask a question about your documents..."
	input.Focus()
	input.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		pipeline: pipeline,
		ctx:      context.Background(),
		topK:     topK,
		input:    input,
		spinner:  sp,
		width:    80,
	}, nil
}

// WithContext sets the context used for pipeline calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init starts the input cursor blink.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.input.Width = msg.Width - 4
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(a.input.Value())
			if question == "" || a.waiting {
				return a, nil
			}
			a.input.Reset()
			a.waiting = true
			return a, tea.Batch(a.spinner.Tick, a.ask(question))
		}

	case answerMsg:
		a.waiting = false
		a.history = append(a.history, exchange{
			question: msg.question,
			result:   msg.result,
			err:      msg.err,
		})
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask runs the chat call off the update loop.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.pipeline.Chat(a.ctx, question, a.topK)
		return answerMsg{question: question, result: result, err: err}
	}
}

// View renders the chat history and input.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("docsight"))
	b.WriteString("\n\n")

	for i := range a.history {
		ex := &a.history[i]
		b.WriteString(questionStyle.Render("> " + ex.question))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render("  " + ex.err.Error()))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(answerStyle.Render(ex.result.Answer))
		b.WriteString("\n")
		for j, e := range ex.result.Evidence {
			b.WriteString(evidenceStyle.Render(
				fmt.Sprintf("[%d] doc %s page %d (%.3f)", j+1, e.DocID, e.PageNum, e.Score)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if a.waiting {
		b.WriteString(a.spinner.View())
		b.WriteString(" thinking...\n\n")
	}

	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: ask  esc: quit"))
	b.WriteString("\n")

	return b.String()
}
