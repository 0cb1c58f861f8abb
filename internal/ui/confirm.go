package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmWord must be typed to accept a [ConfirmModel].
const ConfirmWord = "yes"

// ConfirmModel asks the user to type [ConfirmWord] before a destructive action.
type ConfirmModel struct {
	prompt    string
	input     textinput.Model
	help      help.Model
	keys      keyMap
	confirmed bool
	done      bool
}

// NewConfirmModel creates a prompt showing prompt above the input.
func NewConfirmModel(prompt string) *ConfirmModel {
	ti := textinput.New()
	ti.Placeholder = ConfirmWord
	ti.CharLimit = 16
	ti.Width = 16
	ti.Focus()

	return &ConfirmModel{prompt: prompt, input: ti, help: help.New(), keys: newKeyMap()}
}

// Confirmed reports whether the user typed [ConfirmWord] and pressed enter.
func (m *ConfirmModel) Confirmed() bool {
	return m.confirmed
}

func (m *ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.submit):
			m.confirmed = strings.TrimSpace(m.input.Value()) == ConfirmWord
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ConfirmModel) View() string {
	if m.done {
		return ""
	}
	title := styles.warn.Render(m.prompt)
	instructions := fmt.Sprintf("Type %q to continue.", ConfirmWord)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.cancel})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n", title, instructions, m.input.View(), helpView)
}

// Confirm runs a [ConfirmModel] on in and out and returns the user's answer.
func Confirm(ctx context.Context, in io.Reader, out io.Writer, prompt string) (bool, error) {
	model := NewConfirmModel(prompt)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := program.Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return model.Confirmed(), nil
}
