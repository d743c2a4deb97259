package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		repo  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded reviews",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := history.ListOptions{Repo: repo, Limit: limit}
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return withHistory(func(store history.Store) error {
				return listHistory(store, opts)
			})
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "only reviews of this repository (owner/repo)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of reviews to list")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a recorded review",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHistory(func(store history.Store) error {
					return showReview(store, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a recorded review",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHistory(func(store history.Store) error {
					if err := store.Delete(args[0]); err != nil {
						return reviewLookupError(args[0], err)
					}
					fmt.Printf("Deleted review %s\n", args[0])
					return nil
				})
			},
		},
	)

	return cmd
}

func withHistory(fn func(history.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("open review history: %w", err)
	}
	defer store.Close()

	return fn(store)
}

func listHistory(store history.Store, opts history.ListOptions) error {
	reviews, err := store.List(opts)
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		fmt.Println("No reviews recorded")
		return nil
	}

	for _, r := range reviews {
		status := "ok"
		if r.Failed() {
			status = "failed"
		}
		fmt.Printf("%s  %-14s  %-6s  %s  %s  %s\n",
			r.ID,
			humanize.Time(r.CreatedAt),
			status,
			r.Repo,
			r.Path,
			subtleStyle.Render(r.Provider),
		)
	}
	return nil
}

func showReview(store history.Store, id string) error {
	r, err := store.Get(id)
	if err != nil {
		return reviewLookupError(id, err)
	}

	fmt.Println(titleStyle.Render(r.Repo + " " + r.Path))
	fmt.Println(subtleStyle.Render(fmt.Sprintf("%s · %s · %s", r.Provider, humanize.Time(r.CreatedAt), r.Duration.Round(100*time.Millisecond))))
	fmt.Println()

	if r.Failed() {
		fmt.Println("Error in submitting review: " + *r.Error)
		return nil
	}
	if stdoutIsTerminal() {
		return printMarkdown(r.Content)
	}
	fmt.Println(r.Content)
	return nil
}

func reviewLookupError(id string, err error) error {
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("review %s not found", id)
	}
	return err
}
