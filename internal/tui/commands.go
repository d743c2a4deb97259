package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/source"
)

func (m Model) loadListing(gen uint64, target string) tea.Cmd {
	ctx := m.ctx
	open := m.deps.Open
	cfg := m.cfg
	log := m.log

	return func() tea.Msg {
		src, err := open(target, cfg)
		if err != nil {
			return listingFailedMsg{gen: gen, err: err}
		}

		start := time.Now()
		listing, err := src.ListEntries(ctx)
		if err != nil {
			log.Warn("list repository failed", zap.String("repo", target), zap.Error(err))
			return listingFailedMsg{gen: gen, err: err}
		}
		log.Info("listed repository",
			zap.String("repo", src.Name()),
			zap.Int("entries", len(listing.Entries)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return listingLoadedMsg{gen: gen, source: src, listing: listing}
	}
}

func (m Model) loadFile(gen uint64, src source.Source, path string) tea.Cmd {
	ctx := m.ctx
	log := m.log

	return func() tea.Msg {
		content, err := src.ReadFile(ctx, path)
		if err != nil {
			log.Warn("read file failed", zap.String("path", path), zap.Error(err))
			return fileFailedMsg{gen: gen, path: path, err: err}
		}
		return fileLoadedMsg{gen: gen, path: path, content: content}
	}
}

// streamReview runs gen in a goroutine and returns the channel its events
// arrive on. The channel is closed after the final event.
func streamReview(ctx context.Context, gen review.Generator, req review.Request) <-chan reviewEvent {
	events := make(chan reviewEvent, 16)

	send := func(ev reviewEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(events)
		err := gen.Stream(ctx, req, func(fragment string) error {
			if !send(reviewEvent{fragment: fragment}) {
				return ctx.Err()
			}
			return nil
		})
		send(reviewEvent{err: err, done: true})
	}()

	return events
}

func waitForReview(gen uint64, events <-chan reviewEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return reviewEventMsg{gen: gen, event: reviewEvent{done: true}}
		}
		return reviewEventMsg{gen: gen, event: ev}
	}
}

func (m Model) copyReview(text string) tea.Cmd {
	write := m.deps.Clipboard
	return func() tea.Msg {
		if err := write(text); err != nil {
			return ActionErrorMsg{Operation: "copy review", Err: err}
		}
		return ReviewCopiedMsg{}
	}
}

func (m Model) saveSettings(cfg *config.Config) tea.Cmd {
	save := m.deps.SaveConfig
	return func() tea.Msg {
		if err := save(cfg); err != nil {
			return ActionErrorMsg{Operation: "save settings", Err: err}
		}
		return SettingsSavedMsg{Config: cfg}
	}
}

func (m Model) recordReview(rec *history.Review) tea.Cmd {
	store := m.deps.History
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.Add(rec); err != nil {
			return ActionErrorMsg{Operation: "record review", Err: err}
		}
		return reviewRecordedMsg{id: rec.ID}
	}
}

func (m Model) loadHistory(repo, path string) tea.Cmd {
	store := m.deps.History
	return func() tea.Msg {
		if store == nil {
			return ActionErrorMsg{Operation: "load past reviews", Err: fmt.Errorf("review history is disabled")}
		}
		reviews, err := store.List(history.ListOptions{Repo: repo, Path: path, Limit: historyPickerMaxItems * 5})
		if err != nil {
			return ActionErrorMsg{Operation: "load past reviews", Err: err}
		}
		return historyLoadedMsg{path: path, reviews: reviews}
	}
}
