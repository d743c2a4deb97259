package review

import (
	"path"
	"strings"
)

// Prompt is the text sent to a provider for one Request.
type Prompt struct {
	// System is sent as a separate system message. Empty for providers that
	// take a single user turn.
	System string
	User   string
}

// BuildPrompt formats req for provider p. Gemini gets the system prompt and
// the code as one user turn. OpenAI-style chat gets the system prompt as the
// system message and the code fenced with the file extension.
func BuildPrompt(p Provider, req Request) Prompt {
	system := req.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}

	if p == ProviderOpenAI {
		return Prompt{
			System: system,
			User:   "Review this code:\n```" + FileExtension(req.FileName) + "\n" + req.Code + "\n```",
		}
	}

	user := system
	if !strings.HasSuffix(user, "\n") {
		user += "\n\n"
	}
	return Prompt{User: user + req.Code}
}

// FileExtension returns the extension of name without the dot, or "" when
// there is none.
func FileExtension(name string) string {
	return strings.TrimPrefix(path.Ext(path.Base(name)), ".")
}
