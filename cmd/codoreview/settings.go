package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/review"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newSettingsCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Edit the API key, model and review prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := config.Delete(); err != nil {
					return err
				}
				fmt.Println("Settings reset to defaults")
				return nil
			}
			return runSettings()
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "remove the settings file")
	return cmd
}

func runSettings() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	form := newSettingsForm(cfg)
	if err := form.Run(); err != nil {
		return fmt.Errorf("form input: %w", err)
	}

	normalizeSettings(cfg)

	if err := cfg.Save(); err != nil {
		return err
	}

	path, _ := config.Path()
	fmt.Println(titleStyle.Render("Settings saved"))
	fmt.Println(subtleStyle.Render(path))
	return nil
}

func newSettingsForm(cfg *config.Config) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Options(
					huh.NewOption("Google Gemini", string(review.ProviderGemini)),
					huh.NewOption("OpenAI compatible (GitHub Models, Azure)", string(review.ProviderOpenAI)),
				).
				Value(&cfg.Provider),
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIKey),
			huh.NewInput().
				Title("Model").
				Description("Leave blank for the provider default").
				Value(&cfg.Model),
			huh.NewInput().
				Title("API base URL").
				Description("Leave blank for the provider default").
				Value(&cfg.APIBase),
		),
		huh.NewGroup(
			huh.NewText().
				Title("System prompt").
				Value(&cfg.SystemPrompt),
			huh.NewInput().
				Title("Default repository").
				Placeholder(config.DefaultRepo).
				Value(&cfg.DefaultRepo),
			huh.NewInput().
				Title("GitHub token").
				Description("Optional; raises the API rate limit and opens private repositories").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GitHubToken),
			huh.NewConfirm().
				Title("Expand every directory by default?").
				Value(&cfg.ExpandByDefault),
		),
	)
}

func normalizeSettings(cfg *config.Config) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.APIBase = strings.TrimSpace(cfg.APIBase)
	cfg.GitHubToken = strings.TrimSpace(cfg.GitHubToken)
	cfg.DefaultRepo = strings.TrimSpace(cfg.DefaultRepo)

	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = config.DefaultSystemPrompt
	}
	if cfg.DefaultRepo == "" {
		cfg.DefaultRepo = config.DefaultRepo
	}
	if cfg.Provider == "" {
		cfg.Provider = config.DefaultProvider
	}
}
