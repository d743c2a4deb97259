package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type DialogMode int

const (
	DialogInput DialogMode = iota
	DialogConfirm
)

type DialogSubmitMsg struct {
	Value string
}

type DialogCancelMsg struct{}

type DialogModel struct {
	mode        DialogMode
	title       string
	message     string
	input       textinput.Model
	confirmText string
	cancelText  string
	focused     int
	width       int
}

func NewInputDialog(title, message, placeholder string) DialogModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = urlMaxLength
	ti.Width = dialogInputWidth

	return DialogModel{
		mode:    DialogInput,
		title:   title,
		message: message,
		input:   ti,
		width:   dialogWidth,
	}
}

func NewConfirmDialog(title, message string) DialogModel {
	return DialogModel{
		mode:        DialogConfirm,
		title:       title,
		message:     message,
		confirmText: "Confirm",
		cancelText:  "Cancel",
		focused:     1,
		width:       dialogWidth,
	}
}

func (d DialogModel) Init() tea.Cmd {
	if d.mode == DialogInput {
		return textinput.Blink
	}
	return nil
}

func (d DialogModel) Update(msg tea.Msg) (DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return d, func() tea.Msg { return DialogCancelMsg{} }

		case "enter":
			if d.mode == DialogInput {
				value := strings.TrimSpace(d.input.Value())
				return d, func() tea.Msg { return DialogSubmitMsg{Value: value} }
			}
			if d.focused == 0 {
				return d, func() tea.Msg { return DialogSubmitMsg{} }
			}
			return d, func() tea.Msg { return DialogCancelMsg{} }

		case "tab", "shift+tab", "left", "right":
			if d.mode == DialogConfirm {
				d.focused = 1 - d.focused
				return d, nil
			}
		}
	}

	if d.mode == DialogInput {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}

	return d, nil
}

func (d DialogModel) View() string {
	var content strings.Builder

	content.WriteString(Styles.Common.Header.Render(d.title))
	content.WriteString("\n\n")

	if d.message != "" {
		content.WriteString(d.message)
		content.WriteString("\n\n")
	}

	if d.mode == DialogInput {
		content.WriteString(d.input.View())
		content.WriteString("\n\n")
		content.WriteString(Styles.Dialog.Hint.Render("enter submit • esc cancel"))
	} else {
		confirmStyle := Styles.Dialog.Button
		cancelStyle := Styles.Dialog.Button
		if d.focused == 0 {
			confirmStyle = Styles.Dialog.ButtonFocused
		} else {
			cancelStyle = Styles.Dialog.ButtonFocused
		}

		buttons := lipgloss.JoinHorizontal(
			lipgloss.Center,
			confirmStyle.Render(d.confirmText),
			"  ",
			cancelStyle.Render(d.cancelText),
		)
		content.WriteString(buttons)
	}

	return Styles.Dialog.Box.Width(d.width).Render(content.String())
}

func (d *DialogModel) SetValue(value string) {
	d.input.SetValue(value)
	d.input.CursorEnd()
}
