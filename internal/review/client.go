package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout = 2 * time.Minute
	maxErrorBody   = 8 * 1024
)

// StatusError is returned when a provider answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

type httpClient struct {
	http *http.Client
	log  *zap.Logger
}

func newHTTPClient(opts Options) *httpClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &httpClient{http: hc, log: log}
}

func (c *httpClient) postJSON(ctx context.Context, url string, headers map[string]string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	c.log.Debug("review request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// decodeError understands both {"error":{"message":...}} and
// [{"error":{"message":...}}] bodies.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	type apiError struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	var single apiError
	if err := json.Unmarshal(body, &single); err == nil && single.Error.Message != "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: single.Error.Message}
	}

	var list []apiError
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 && list[0].Error.Message != "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: list[0].Error.Message}
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
