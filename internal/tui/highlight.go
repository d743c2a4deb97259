package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
)

const (
	highlightStyle = "monokai"
	tabWidth       = 4
)

// highlightCode colors content by the language its file name implies. When
// no lexer applies the text is returned as is.
func highlightCode(path, content string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		return content
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return content
	}
	return b.String()
}

// numberLines prefixes each line of the (possibly highlighted) text with its
// line number.
func numberLines(text string) string {
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	// Formatters may leave a lone reset sequence after the final newline.
	if n := len(lines); n > 1 && lines[n-1] != "" && ansi.Strip(lines[n-1]) == "" {
		lines[n-2] += lines[n-1]
		lines = lines[:n-1]
	}

	width := max(len(strconv.Itoa(len(lines))), lineNumberMinWidth)
	gutter := Styles.Viewer.Gutter.Render(" │ ")

	var b strings.Builder
	for i, line := range lines {
		b.WriteString(Styles.Viewer.LineNumber.Render(fmt.Sprintf("%*d", width, i+1)))
		b.WriteString(gutter)
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderSource(path, content string) string {
	content = strings.ReplaceAll(content, "\t", strings.Repeat(" ", tabWidth))
	return numberLines(highlightCode(path, content))
}
