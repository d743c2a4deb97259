package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary       = lipgloss.Color("62")
	colorPrimaryDark   = lipgloss.Color("60")
	colorTextOnPrimary = lipgloss.Color("230")
	colorText          = lipgloss.Color("255")
	colorTextMuted     = lipgloss.Color("243")
	colorSurface       = lipgloss.Color("236")
	colorWarning       = lipgloss.Color("11")
	colorError         = lipgloss.Color("9")
)

type commonStyles struct {
	Header   lipgloss.Style
	MetaText lipgloss.Style
}

type paneStyles struct {
	Border       lipgloss.Style
	BorderActive lipgloss.Style
	Title        lipgloss.Style
	TitleActive  lipgloss.Style
}

type treeStyles struct {
	Dir      lipgloss.Style
	File     lipgloss.Style
	Dotfile  lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Size     lipgloss.Style
}

type viewerStyles struct {
	LineNumber lipgloss.Style
	Gutter     lipgloss.Style
}

type reviewStyles struct {
	Placeholder lipgloss.Style
	Error       lipgloss.Style
}

type dialogStyles struct {
	Box           lipgloss.Style
	Label         lipgloss.Style
	Hint          lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
}

type footerStyles struct {
	Badge         lipgloss.Style
	Help          lipgloss.Style
	StatusMessage lipgloss.Style
}

type errorStyles struct {
	Box   lipgloss.Style
	Title lipgloss.Style
}

type helpStyles struct {
	Box   lipgloss.Style
	Title lipgloss.Style
}

type pickerStyles struct {
	Selected lipgloss.Style
}

var Styles = struct {
	Common commonStyles
	Pane   paneStyles
	Tree   treeStyles
	Viewer viewerStyles
	Review reviewStyles
	Dialog dialogStyles
	Footer footerStyles
	Error  errorStyles
	Help   helpStyles
	Picker pickerStyles
}{
	Common: commonStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText),
		MetaText: lipgloss.NewStyle().
			Foreground(colorTextMuted),
	},
	Pane: paneStyles{
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface),
		BorderActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary),
		Title: lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Bold(true),
		TitleActive: lipgloss.NewStyle().
			Foreground(colorTextOnPrimary).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1),
	},
	Tree: treeStyles{
		Dir: lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true),
		File: lipgloss.NewStyle().
			Foreground(colorText),
		Dotfile: lipgloss.NewStyle().
			Foreground(colorTextMuted),
		Cursor: lipgloss.NewStyle().
			Background(colorSurface),
		Selected: lipgloss.NewStyle().
			Background(colorPrimaryDark).
			Foreground(colorTextOnPrimary).
			Bold(true),
		Size: lipgloss.NewStyle().
			Foreground(colorTextMuted),
	},
	Viewer: viewerStyles{
		LineNumber: lipgloss.NewStyle().
			Foreground(colorTextMuted),
		Gutter: lipgloss.NewStyle().
			Foreground(colorSurface),
	},
	Review: reviewStyles{
		Placeholder: lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(colorError),
	},
	Dialog: dialogStyles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2).
			Background(colorSurface),
		Label: lipgloss.NewStyle().
			Foreground(colorTextMuted),
		Hint: lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true),
		Button: lipgloss.NewStyle().
			Padding(0, 2).
			Background(colorSurface).
			Foreground(colorText).
			Faint(true),
		ButtonFocused: lipgloss.NewStyle().
			Padding(0, 2).
			Background(colorPrimary).
			Foreground(colorTextOnPrimary).
			Bold(true),
	},
	Footer: footerStyles{
		Badge: lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(colorTextOnPrimary).
			Bold(true).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorTextMuted).
			PaddingLeft(1),
		StatusMessage: lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWarning).
			Italic(true).
			PaddingLeft(1),
	},
	Error: errorStyles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),
	},
	Help: helpStyles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2).
			Background(colorSurface),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText),
	},
	Picker: pickerStyles{
		Selected: lipgloss.NewStyle().
			Reverse(true),
	},
}
