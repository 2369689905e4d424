package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markpasc/luabject/coop"
	"github.com/markpasc/luabject/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	cfg      Config
	rt       *runtime.Runtime
	funcs    []string
	input    textinput.Model
	result   string
	pumps    int
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(cfg Config) *interactiveModel {
	return &interactiveModel{
		cfg:   cfg,
		state: stateSelectFunc,
	}
}

type loadedMsg struct {
	err   error
	rt    *runtime.Runtime
	funcs []string
}

type callResultMsg struct {
	err    error
	result string
	pumps  int
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadScript
}

func (m *interactiveModel) loadScript() tea.Msg {
	source, err := os.ReadFile(m.cfg.Script)
	if err != nil {
		return loadedMsg{err: err}
	}

	rt, err := newRuntime(m.cfg)
	if err != nil {
		return loadedMsg{err: err}
	}

	if err := coop.RunScript(context.Background(), rt, string(source)); err != nil {
		rt.Close()
		return loadedMsg{err: err}
	}

	return loadedMsg{rt: rt, funcs: rt.Callables()}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.rt != nil {
				m.rt.Close()
			}
			return m, tea.Quit

		case "q":
			if m.state == stateInputArgs {
				break
			}
			if m.rt != nil {
				m.rt.Close()
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					break
				}
				m.prepareInput()
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.funcs = msg.funcs

	case callResultMsg:
		m.result = msg.result
		m.pumps = msg.pumps
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "comma-separated arguments, empty for none"
	ti.Prompt = "args: "
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) callFunction() tea.Msg {
	name := m.funcs[m.selected]

	var args []any
	if raw := strings.TrimSpace(m.input.Value()); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			args = append(args, convertArg(strings.TrimSpace(part)))
		}
	}

	th, err := m.rt.Spawn()
	if err != nil {
		return callResultMsg{err: err}
	}
	if err := th.LoadFunction(name, args...); err != nil {
		return callResultMsg{err: err}
	}

	pumps := 0
	r := coop.Runner{
		Yield: func(ctx context.Context) error {
			pumps++
			return ctx.Err()
		},
	}
	if err := r.Run(context.Background(), th); err != nil {
		return callResultMsg{err: err, pumps: pumps}
	}

	parts := make([]string, 0, len(th.Results()))
	for _, v := range th.Results() {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	return callResultMsg{result: strings.Join(parts, ", "), pumps: pumps}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.rt == nil {
		return "Loading script..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Script Runner"))
	b.WriteString(" ")
	b.WriteString(m.cfg.Script)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("The script defines no callable functions.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, name := range m.funcs {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + name))
			} else {
				b.WriteString(cursor + funcStyle.Render(name))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(m.funcs[m.selected])))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(m.funcs[m.selected])))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else if m.result == "" {
			b.WriteString(resultStyle.Render("(no results)"))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString(fmt.Sprintf("\n\n%s\n", helpStyle.Render(fmt.Sprintf("%d suspensions", m.pumps))))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(cfg Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
