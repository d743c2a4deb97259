package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bantamhq/codoreview/internal/config"
)

type settingsField int

const (
	fieldAPIKey settingsField = iota
	fieldProvider
	fieldModel
	fieldSystemPrompt
	fieldGitHubToken
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	fieldAPIKey:       "API key",
	fieldProvider:     "Provider (gemini, openai)",
	fieldModel:        "Model (blank for default)",
	fieldSystemPrompt: "System prompt",
	fieldGitHubToken:  "GitHub token (optional)",
}

type SettingsSubmitMsg struct {
	Config *config.Config
}

type SettingsCancelMsg struct{}

// SettingsModel edits the review settings in place of the settings file.
type SettingsModel struct {
	base    config.Config
	inputs  [settingsFieldCount]textinput.Model
	focused settingsField
	width   int
}

func NewSettingsModel(cfg *config.Config) SettingsModel {
	s := SettingsModel{base: *cfg, width: dialogWidth}

	values := [settingsFieldCount]string{
		fieldAPIKey:       cfg.APIKey,
		fieldProvider:     cfg.Provider,
		fieldModel:        cfg.Model,
		fieldSystemPrompt: cfg.SystemPrompt,
		fieldGitHubToken:  cfg.GitHubToken,
	}

	for i := range s.inputs {
		ti := textinput.New()
		ti.Width = dialogInputWidth
		ti.SetValue(values[i])
		if settingsField(i) == fieldAPIKey || settingsField(i) == fieldGitHubToken {
			ti.EchoMode = textinput.EchoPassword
		}
		s.inputs[i] = ti
	}
	s.inputs[fieldAPIKey].Focus()

	return s
}

func (s SettingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (s SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return s, func() tea.Msg { return SettingsCancelMsg{} }

		case "ctrl+s":
			cfg := s.Config()
			return s, func() tea.Msg { return SettingsSubmitMsg{Config: cfg} }

		case "enter":
			if s.focused == settingsFieldCount-1 {
				cfg := s.Config()
				return s, func() tea.Msg { return SettingsSubmitMsg{Config: cfg} }
			}
			s.focus(s.focused + 1)
			return s, nil

		case "tab", "down":
			s.focus((s.focused + 1) % settingsFieldCount)
			return s, nil

		case "shift+tab", "up":
			s.focus((s.focused + settingsFieldCount - 1) % settingsFieldCount)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focused], cmd = s.inputs[s.focused].Update(msg)
	return s, cmd
}

func (s *SettingsModel) focus(field settingsField) {
	s.inputs[s.focused].Blur()
	s.focused = field
	s.inputs[s.focused].Focus()
}

// Config returns a copy of the stored settings with the edited fields
// applied.
func (s SettingsModel) Config() *config.Config {
	cfg := s.base
	cfg.APIKey = strings.TrimSpace(s.inputs[fieldAPIKey].Value())
	cfg.Provider = strings.ToLower(strings.TrimSpace(s.inputs[fieldProvider].Value()))
	cfg.Model = strings.TrimSpace(s.inputs[fieldModel].Value())
	cfg.SystemPrompt = strings.TrimSpace(s.inputs[fieldSystemPrompt].Value())
	cfg.GitHubToken = strings.TrimSpace(s.inputs[fieldGitHubToken].Value())

	if cfg.Provider == "" {
		cfg.Provider = config.DefaultProvider
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = config.DefaultSystemPrompt
	}
	return &cfg
}

func (s SettingsModel) View() string {
	var content strings.Builder

	content.WriteString(Styles.Common.Header.Render("Settings"))
	content.WriteString("\n\n")

	for i := range s.inputs {
		content.WriteString(Styles.Dialog.Label.Render(settingsLabels[i]))
		content.WriteString("\n")
		content.WriteString(s.inputs[i].View())
		content.WriteString("\n\n")
	}

	content.WriteString(Styles.Dialog.Hint.Render("tab next • ctrl+s save • esc cancel"))

	return Styles.Dialog.Box.Width(s.width).Render(content.String())
}
