package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/logging"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/source"
)

type reviewFlags struct {
	raw       bool
	prompt    string
	noHistory bool
}

func newReviewCmd(root *rootFlags) *cobra.Command {
	flags := &reviewFlags{}

	cmd := &cobra.Command{
		Use:   "review <repository> <path>",
		Short: "Review one file and print the result",
		Long: `Review fetches one file from a repository, sends it to the configured
model and prints the review. On a terminal the review is rendered as
markdown once it is complete; otherwise text is written as it arrives.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if flags.prompt != "" {
				cfg.SystemPrompt = flags.prompt
			}

			log, err := logging.NewConsole(root.debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runReview(ctx, cfg, args[0], args[1], flags, log)
		},
	}

	cmd.Flags().BoolVar(&flags.raw, "raw", false, "print the markdown source instead of rendering it")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "system prompt for this review")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record the review")
	return cmd
}

func runReview(ctx context.Context, cfg *config.Config, target, path string, flags *reviewFlags, log *zap.Logger) error {
	gen, err := newGenerator(cfg, log)
	if err != nil {
		return fmt.Errorf("create reviewer: %w", err)
	}

	src, err := openSource(target, cfg, log)
	if err != nil {
		return err
	}

	// Resolves the branch so the file is read from the listed ref.
	listing, err := src.ListEntries(ctx)
	if err != nil {
		return err
	}

	content, err := src.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	req := review.Request{FileName: path, Code: content, SystemPrompt: cfg.SystemPrompt}
	render := !flags.raw && stdoutIsTerminal()

	start := time.Now()
	var text string
	if render {
		fmt.Fprintf(os.Stderr, "Reviewing %s with %s..\n", path, gen.Name())
		text, err = review.Collect(ctx, gen, req)
	} else {
		text, err = streamToStdout(ctx, gen, req)
	}
	elapsed := time.Since(start)

	if !flags.noHistory {
		recordReview(cfg, &history.Review{
			Repo:     repoKey(src),
			Ref:      listing.Ref,
			Path:     path,
			Provider: gen.Name(),
			Content:  text,
			Error:    errorText(err),
			Duration: elapsed,
		}, log)
	}

	if err != nil {
		return fmt.Errorf("review %s: %w", path, err)
	}

	if render {
		return printMarkdown(text)
	}
	fmt.Println()
	return nil
}

func streamToStdout(ctx context.Context, gen review.Generator, req review.Request) (string, error) {
	var b strings.Builder
	err := gen.Stream(ctx, req, func(fragment string) error {
		b.WriteString(fragment)
		_, err := os.Stdout.WriteString(fragment)
		return err
	})
	return b.String(), err
}

func printMarkdown(text string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(min(terminalWidth(), 120)-2),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := renderer.Render(text)
	if err != nil {
		return fmt.Errorf("render review: %w", err)
	}
	fmt.Print(out)
	return nil
}

// recordReview stores rec. History is best effort; failures are only logged.
func recordReview(cfg *config.Config, rec *history.Review, log *zap.Logger) {
	store, err := openHistory(cfg)
	if err != nil {
		log.Warn("open review history", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.Add(rec); err != nil {
		log.Warn("record review", zap.Error(err))
		return
	}
	log.Debug("review recorded", zap.String("id", rec.ID))
}

func repoKey(src source.Source) string {
	name := src.Name()
	if i := strings.LastIndex(name, "@"); i > 0 {
		return name[:i]
	}
	return name
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
