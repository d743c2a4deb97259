package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultOpenAIBaseURL = "https://models.inference.ai.azure.com"
	DefaultOpenAIModel   = "gpt-4o"

	openAITemperature = 0.7
)

type openAI struct {
	*httpClient
	baseURL string
	model   string
	apiKey  string
}

func newOpenAI(base *httpClient, opts Options) *openAI {
	o := &openAI{
		httpClient: base,
		baseURL:    DefaultOpenAIBaseURL,
		model:      DefaultOpenAIModel,
		apiKey:     opts.APIKey,
	}
	if opts.BaseURL != "" {
		o.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model != "" {
		o.model = opts.Model
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *openAI) Name() string {
	return string(ProviderOpenAI) + "/" + o.model
}

func (o *openAI) Stream(ctx context.Context, req Request, onFragment func(string) error) error {
	if err := req.Validate(); err != nil {
		return err
	}

	prompt := BuildPrompt(ProviderOpenAI, req)
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: openAITemperature,
		Stream:      true,
	}

	headers := map[string]string{
		"api-key":       o.apiKey,
		"Authorization": "Bearer " + o.apiKey,
	}

	resp, err := o.postJSON(ctx, o.baseURL+"/chat/completions", headers, body)
	if err != nil {
		return fmt.Errorf("generate review: %w", err)
	}
	defer resp.Body.Close()

	fragments := 0
	err = readEvents(resp.Body, func(data string) error {
		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("decode chunk: %w", err)
		}
		for _, choice := range chunk.Choices {
			if choice.FinishReason == "content_filter" {
				return fmt.Errorf("%w: %s", ErrBlocked, choice.FinishReason)
			}
			if choice.Delta.Content == "" {
				continue
			}
			fragments++
			if err := onFragment(choice.Delta.Content); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("generate review: %w", err)
	}

	o.log.Debug("review stream finished", zap.String("model", o.model), zap.Int("fragments", fragments))
	return nil
}
