package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/logging"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/source"
	"github.com/bantamhq/codoreview/internal/tui"
)

type rootFlags struct {
	branch    string
	expand    bool
	logFile   string
	debug     bool
	noHistory bool
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "codoreview [repository]",
		Short: "Browse a repository and ask an AI model to review its files",
		Long: `codoreview shows the file tree of a GitHub repository or local git
checkout, displays the selected file and streams an AI code review of it.

The repository may be a GitHub URL, owner/repo or a local path. Without one
the configured default repository is opened.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.branch, "branch", "b", "", "branch, tag or commit to browse")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log at debug level")
	rootCmd.Flags().BoolVar(&flags.expand, "expand", false, "expand every directory when it first appears")
	rootCmd.Flags().StringVar(&flags.logFile, "log-file", "", "append logs to this file")
	rootCmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record reviews")

	rootCmd.AddCommand(
		newTreeCmd(flags),
		newReviewCmd(flags),
		newSettingsCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("expand") {
		cfg.ExpandByDefault = flags.expand
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}

	log, err := logging.NewFile(cfg.LogFile, flags.debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	var store history.Store
	if !flags.noHistory {
		st, err := openHistory(cfg)
		if err != nil {
			log.Warn("review history disabled", zap.Error(err))
		} else {
			defer st.Close()
			store = st
		}
	}

	var target string
	if len(args) > 0 {
		target = args[0]
	}

	log.Info("starting", zap.String("target", target), zap.String("branch", cfg.Branch))

	return tui.Run(tui.Deps{
		Config: cfg,
		Target: target,
		Open: func(target string, cfg *config.Config) (source.Source, error) {
			return openSource(target, cfg, log)
		},
		NewGenerator: func(cfg *config.Config) (review.Generator, error) {
			return newGenerator(cfg, log)
		},
		History: store,
		Logger:  log,
	})
}

// loadConfig reads the settings file and applies the flags shared by every
// command.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.branch != "" {
		cfg.Branch = flags.branch
	}
	return cfg, nil
}

func openHistory(cfg *config.Config) (*history.SQLiteStore, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}
