package main

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/github"
	"github.com/bantamhq/codoreview/internal/gitlocal"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/source"
)

// openSource picks the source for target. An existing directory is opened as
// a local checkout; anything else must name a GitHub repository.
func openSource(target string, cfg *config.Config, log *zap.Logger) (source.Source, error) {
	target = strings.TrimSpace(target)

	if isLocalPath(target) {
		repo, err := gitlocal.Open(target, cfg.Branch, log)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	ref, err := github.ParseRepoURL(target)
	if err != nil {
		return nil, err
	}

	client := github.New(
		github.WithToken(cfg.GitHubToken),
		github.WithLogger(log),
	)
	return client.Repository(ref, cfg.Branch), nil
}

func isLocalPath(target string) bool {
	if target == "" || strings.Contains(target, "://") {
		return false
	}
	info, err := os.Stat(target)
	return err == nil && info.IsDir()
}

func newGenerator(cfg *config.Config, log *zap.Logger) (review.Generator, error) {
	if !cfg.IsConfigured() {
		return nil, review.ErrNoAPIKey
	}
	provider, err := review.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return review.New(review.Options{
		Provider: provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.APIBase,
		Logger:   log,
	})
}
