package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvents(w http.ResponseWriter, events ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, e := range events {
		fmt.Fprintf(w, "data: %s\n\n", e)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func geminiEvent(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

func chatEvent(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"delta": map[string]any{"content": text}}},
	})
	return string(b)
}

func TestGemini_Stream(t *testing.T) {
	var (
		gotPath  string
		gotKey   string
		gotQuery string
		gotBody  geminiRequest
	)

	r := chi.NewRouter()
	r.Post("/v1beta/models/*", func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		gotQuery = req.URL.RawQuery
		gotKey = req.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(req.Body).Decode(&gotBody))
		writeEvents(w, geminiEvent("Use "), geminiEvent("const."))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	g, err := New(Options{Provider: ProviderGemini, APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "gemini/gemini-1.5-flash", g.Name())

	var fragments []string
	err = g.Stream(context.Background(), Request{FileName: "app.js", Code: "var x = 1", SystemPrompt: "Be brief."},
		func(s string) error {
			fragments = append(fragments, s)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"Use ", "const."}, fragments)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:streamGenerateContent", gotPath)
	assert.Equal(t, "alt=sse", gotQuery)
	assert.Equal(t, "k", gotKey)

	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	assert.Equal(t, "Be brief.\n\nvar x = 1", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, []geminiSafetySetting{{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"}},
		gotBody.SafetySettings)
}

func TestGemini_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer srv.Close()

	g, err := New(Options{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	err = g.Stream(context.Background(), Request{FileName: "a.go"}, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestOpenAI_Stream(t *testing.T) {
	var (
		gotKey  string
		gotBody chatRequest
	)

	r := chi.NewRouter()
	r.Post("/chat/completions", func(w http.ResponseWriter, req *http.Request) {
		gotKey = req.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(req.Body).Decode(&gotBody))
		writeEvents(w, chatEvent("Looks "), chatEvent(""), chatEvent("fine."), "[DONE]")
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	g, err := New(Options{Provider: ProviderOpenAI, APIKey: "secret", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	review, err := Collect(context.Background(), g, Request{FileName: "src/main.py", Code: "print(1)"})
	require.NoError(t, err)

	assert.Equal(t, "Looks fine.", review)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "gpt-4o", gotBody.Model)
	assert.True(t, gotBody.Stream)
	assert.InDelta(t, 0.7, gotBody.Temperature, 1e-9)
	assert.Equal(t, []chatMessage{
		{Role: "system", Content: DefaultSystemPrompt},
		{Role: "user", Content: "Review this code:\n```py\nprint(1)\n```"},
	}, gotBody.Messages)
}

func TestStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	for _, p := range []Provider{ProviderGemini, ProviderOpenAI} {
		t.Run(string(p), func(t *testing.T) {
			g, err := New(Options{Provider: p, APIKey: "bad", BaseURL: srv.URL})
			require.NoError(t, err)

			err = g.Stream(context.Background(), Request{FileName: "a.go"}, func(string) error { return nil })
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
			assert.Equal(t, "API key not valid", statusErr.Message)
		})
	}
}

func TestStream_CallbackErrorStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, chatEvent("one"), chatEvent("two"), chatEvent("three"))
	}))
	defer srv.Close()

	g, err := New(Options{Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = g.Stream(context.Background(), Request{FileName: "a.go"}, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{APIKey: "  "})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(Options{APIKey: "k", Provider: "claude"})
	assert.ErrorIs(t, err, ErrBadConfig)

	g, err := New(Options{APIKey: "k"})
	require.NoError(t, err)
	err = g.Stream(context.Background(), Request{Code: "x"}, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestParseProvider(t *testing.T) {
	tests := map[string]Provider{
		"":        ProviderGemini,
		"gemini":  ProviderGemini,
		" OpenAI": ProviderOpenAI,
		"azure":   ProviderOpenAI,
	}
	for in, want := range tests {
		got, err := ParseProvider(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProvider("other")
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestBuildPrompt(t *testing.T) {
	req := Request{FileName: "Makefile", Code: "all:", SystemPrompt: "Check it.\n"}

	assert.Equal(t, Prompt{User: "Check it.\nall:"}, BuildPrompt(ProviderGemini, req))
	assert.Equal(t, Prompt{System: "Check it.\n", User: "Review this code:\n```\nall:\n```"},
		BuildPrompt(ProviderOpenAI, req))

	assert.Equal(t, "ts", FileExtension("web/src/index.ts"))
	assert.Equal(t, "", FileExtension("dir.d/README"))
	assert.Equal(t, "gitignore", FileExtension(".gitignore"))
}

func TestReadEvents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "data: a\n\n", want: []string{"a"}},
		{name: "no trailing blank line", input: "data: a", want: []string{"a"}},
		{name: "crlf", input: "data: a\r\n\r\ndata: b\r\n\r\n", want: []string{"a", "b"}},
		{name: "multi-line data", input: "data: a\ndata: b\n\n", want: []string{"a\nb"}},
		{name: "comments and other fields", input: ": ping\nevent: x\nid: 1\ndata:a\n\n", want: []string{"a"}},
		{name: "done ends stream", input: "data: a\n\ndata: [DONE]\n\ndata: b\n\n", want: []string{"a"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			err := readEvents(strings.NewReader(tt.input), func(data string) error {
				got = append(got, data)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
