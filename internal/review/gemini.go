package review

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-1.5-flash"
)

type gemini struct {
	*httpClient
	baseURL string
	model   string
	apiKey  string
}

func newGemini(base *httpClient, opts Options) *gemini {
	g := &gemini{
		httpClient: base,
		baseURL:    DefaultGeminiBaseURL,
		model:      DefaultGeminiModel,
		apiKey:     opts.APIKey,
	}
	if opts.BaseURL != "" {
		g.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model != "" {
		g.model = opts.Model
	}
	return g
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents       []geminiContent       `json:"contents"`
	SafetySettings []geminiSafetySetting `json:"safetySettings,omitempty"`
}

type geminiChunk struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (g *gemini) Name() string {
	return string(ProviderGemini) + "/" + g.model
}

func (g *gemini) Stream(ctx context.Context, req Request, onFragment func(string) error) error {
	if err := req.Validate(); err != nil {
		return err
	}

	prompt := BuildPrompt(ProviderGemini, req)
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt.User}}}},
		SafetySettings: []geminiSafetySetting{{
			Category:  "HARM_CATEGORY_HARASSMENT",
			Threshold: "BLOCK_ONLY_HIGH",
		}},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse",
		g.baseURL, url.PathEscape(g.model))

	resp, err := g.postJSON(ctx, endpoint, map[string]string{"x-goog-api-key": g.apiKey}, body)
	if err != nil {
		return fmt.Errorf("generate review: %w", err)
	}
	defer resp.Body.Close()

	fragments := 0
	err = readEvents(resp.Body, func(data string) error {
		var chunk geminiChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("decode chunk: %w", err)
		}
		if chunk.PromptFeedback != nil && chunk.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("%w: %s", ErrBlocked, chunk.PromptFeedback.BlockReason)
		}
		for _, cand := range chunk.Candidates {
			if cand.FinishReason == "SAFETY" {
				return fmt.Errorf("%w: %s", ErrBlocked, cand.FinishReason)
			}
			for _, part := range cand.Content.Parts {
				if part.Text == "" {
					continue
				}
				fragments++
				if err := onFragment(part.Text); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("generate review: %w", err)
	}

	g.log.Debug("review stream finished", zap.String("model", g.model), zap.Int("fragments", fragments))
	return nil
}
