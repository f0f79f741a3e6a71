package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField struct {
	label       string
	placeholder string
	value       string
	width       int
}

// form is a vertical list of text inputs. Screens own one while a create or edit form is open.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	err    error
}

type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

func newForm(title string, fields ...formField) *form {
	f := &form{title: title}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.CharLimit = 200
		in.Width = fd.width
		if in.Width == 0 {
			in.Width = 40
		}
		in.SetValue(fd.value)
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	return f
}

func (f *form) Focus() tea.Cmd {
	return f.inputs[f.focus].Focus()
}

func (f *form) value(i int) string {
	return f.inputs[i].Value()
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Update handles navigation keys. Enter on the last field or ctrl+s submits; esc cancels.
func (f *form) Update(msg tea.Msg) (formResult, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return formCancelled, nil
		case "tab", "down":
			return formEditing, f.move(1)
		case "shift+tab", "up":
			return formEditing, f.move(-1)
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return formSubmitted, nil
			}
			return formEditing, f.move(1)
		case "ctrl+s":
			return formSubmitted, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formEditing, cmd
}

func (f *form) View() string {
	s := titleStyle.Render(f.title) + "\n\n"
	for i, label := range f.labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == f.focus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), f.inputs[i].View())
	}

	if f.err != nil {
		s += errorText(f.err) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}
