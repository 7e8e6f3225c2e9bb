package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"nimbus/internal/review"
)

// SelectConfirmer shows a Yes/No selector. y and n answer directly; esc,
// q and ctrl+c abort the review.
type SelectConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements review.Confirmer.
func (s *SelectConfirmer) Confirm(ctx context.Context, p review.Prompt) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if s.In != nil {
		opts = append(opts, tea.WithInput(s.In))
	}
	if s.Out != nil {
		opts = append(opts, tea.WithOutput(s.Out))
	}
	final, err := tea.NewProgram(newConfirmModel(p), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	model, ok := final.(confirmModel)
	if !ok || model.aborted {
		return false, ErrAborted
	}
	return model.accepted, nil
}

var choices = []string{"Yes", "No"}

type confirmModel struct {
	prompt   review.Prompt
	cursor   int
	done     bool
	accepted bool
	aborted  bool
}

func newConfirmModel(p review.Prompt) confirmModel {
	model := confirmModel{prompt: p}
	if p.Command.Destination == "" {
		// Nothing to apply; default to moving on.
		model.cursor = 1
	}
	return model
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k", "left", "h":
		m.cursor = 0
	case "down", "j", "right", "l":
		m.cursor = 1
	case "tab":
		m.cursor = (m.cursor + 1) % len(choices)
	case "y", "Y":
		m.accepted, m.done = true, true
	case "n", "N":
		m.accepted, m.done = false, true
	case "enter":
		m.accepted, m.done = m.cursor == 0, true
	case "esc", "q", "ctrl+c":
		m.aborted, m.done = true, true
	}
	if m.done {
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	var b strings.Builder
	b.WriteString(counterStyle.Render(fmt.Sprintf("[%d/%d] ", m.prompt.Index, m.prompt.Total)))
	b.WriteString(commandStyle.Render(m.prompt.Command.Describe()))
	if m.prompt.Note != "" {
		b.WriteString(" " + noteStyle.Render("("+m.prompt.Note+")"))
	}
	b.WriteString("\n")
	if m.done {
		answer := "declined"
		switch {
		case m.aborted:
			answer = "aborted"
		case m.accepted:
			answer = "accepted"
		}
		b.WriteString(optionStyle.Render("  " + answer))
		b.WriteString("\n")
		return b.String()
	}
	for i, choice := range choices {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + choice))
		} else {
			b.WriteString(optionStyle.Render("  " + choice))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("[y/n] answer | [enter] select | [esc] quit review"))
	b.WriteString("\n")
	return b.String()
}
