// Package review streams AI code reviews from a hosted model.
package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const DefaultSystemPrompt = "You are a helpful code reviewer. Provide a concise code review with just one or two key points for improvement."

var (
	ErrNoAPIKey  = errors.New("API key is required")
	ErrNoFile    = errors.New("no file selected")
	ErrBlocked   = errors.New("review blocked by safety filter")
	ErrBadConfig = errors.New("invalid review settings")
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider maps a settings value to a Provider. Empty means Gemini.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI, "azure":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("%w: unknown provider %q", ErrBadConfig, s)
	}
}

// Request is one file submitted for review.
type Request struct {
	FileName     string
	Code         string
	SystemPrompt string
}

func (r Request) Validate() error {
	if r.FileName == "" {
		return ErrNoFile
	}
	return nil
}

// Generator streams review text. Stream calls onFragment with each piece of
// text in arrival order and returns once the model finishes, the context is
// cancelled or onFragment returns an error.
type Generator interface {
	Name() string
	Stream(ctx context.Context, req Request, onFragment func(string) error) error
}

type Options struct {
	Provider   Provider
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New builds the Generator for opts.Provider.
func New(opts Options) (Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	base := newHTTPClient(opts)
	switch opts.Provider {
	case "", ProviderGemini:
		return newGemini(base, opts), nil
	case ProviderOpenAI:
		return newOpenAI(base, opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrBadConfig, opts.Provider)
	}
}

// Collect runs g to completion and returns the whole review.
func Collect(ctx context.Context, g Generator, req Request) (string, error) {
	var b strings.Builder
	err := g.Stream(ctx, req, func(fragment string) error {
		b.WriteString(fragment)
		return nil
	})
	return b.String(), err
}
