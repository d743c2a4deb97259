package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/logging"
	"github.com/bantamhq/codoreview/internal/repotree"
)

var (
	dirStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dotfileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1)
	rootStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sizeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTreeCmd(flags *rootFlags) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [repository]",
		Short: "Print the file tree of a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			log, err := logging.NewConsole(flags.debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			target := cfg.DefaultRepo
			if len(args) > 0 {
				target = args[0]
			}
			return printTree(ctx, cfg, target, depth, log)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "limit the printed depth (0 prints everything)")
	return cmd
}

func printTree(ctx context.Context, cfg *config.Config, target string, depth int, log *zap.Logger) error {
	src, err := openSource(target, cfg, log)
	if err != nil {
		return err
	}

	listing, err := src.ListEntries(ctx)
	if err != nil {
		return err
	}

	root := repotree.Build(listing.Entries)
	dirs, files := root.Count()

	t := tree.Root(src.Name()).
		RootStyle(rootStyle).
		EnumeratorStyle(enumeratorStyle)
	addChildren(t, root, 1, depth)

	fmt.Println(t.String())
	fmt.Println()
	fmt.Printf("%d directories, %d files\n", dirs, files)
	if listing.Truncated {
		fmt.Fprintln(os.Stderr, "Warning: the listing was truncated by the server")
	}
	return nil
}

func addChildren(t *tree.Tree, node *repotree.Node, level, maxDepth int) {
	for _, child := range node.SortedChildren() {
		if !child.IsDir {
			t.Child(fileLabel(child))
			continue
		}

		label := dirStyle.Render(child.Name + "/")
		if maxDepth > 0 && level >= maxDepth {
			t.Child(label)
			continue
		}

		sub := tree.Root(label).EnumeratorStyle(enumeratorStyle)
		addChildren(sub, child, level+1, maxDepth)
		t.Child(sub)
	}
}

func fileLabel(node *repotree.Node) string {
	name := node.Name
	if repotree.IsDotfile(name) {
		name = dotfileStyle.Render(name)
	}
	if node.Size > 0 {
		name += " " + sizeStyle.Render(formatSize(node.Size))
	}
	return name
}
