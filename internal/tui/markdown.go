package tui

import (
	"bytes"
	"strings"

	"charm.land/glamour/v2"
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// renderMarkdown renders markdown content at the given width. Fenced code
// blocks are pulled out and highlighted with chroma so the code block
// background applies; the prose between them goes through glamour.
func renderMarkdown(content string, width int) string {
	// Cap width to 120 for readability
	if width > 120 {
		width = 120
	}

	var blocks []string
	for _, seg := range splitFences(content) {
		if seg.code {
			blocks = append(blocks, renderCodeBlock(seg.text, seg.lang, width))
		} else {
			blocks = append(blocks, renderProse(seg.text, width))
		}
	}
	return strings.Join(blocks, "\n")
}

// mdSegment is a run of prose or one fenced code block.
type mdSegment struct {
	code bool
	lang string
	text string
}

// splitFences splits markdown into prose runs and fenced code blocks. An
// unterminated fence runs to the end of the content.
func splitFences(content string) []mdSegment {
	var segs []mdSegment
	var buf []string
	inFence := false
	lang := ""

	flush := func() {
		if len(buf) == 0 {
			return
		}
		segs = append(segs, mdSegment{code: inFence, lang: lang, text: strings.Join(buf, "\n")})
		buf = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			flush()
			if inFence {
				inFence = false
				lang = ""
			} else {
				inFence = true
				lang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return segs
}

// renderProse renders a markdown segment with glamour. Falls back to plain
// text wrapping if rendering fails.
func renderProse(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// renderCodeBlock highlights one fenced code block and paints the code
// background across the full width.
func renderCodeBlock(source, language string, width int) string {
	var lines []string
	for _, line := range strings.Split(syntaxHighlight(source, language), "\n") {
		lines = append(lines, styleCodeBlock.Width(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

// wrapText wraps plain text at word boundaries to fit the given width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if len(line) <= width {
			out = append(out, line)
			continue
		}

		var current strings.Builder
		for _, word := range strings.Fields(line) {
			if current.Len() > 0 && current.Len()+1+len(word) > width {
				out = append(out, current.String())
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(word)
		}
		if current.Len() > 0 {
			out = append(out, current.String())
		}
	}
	return strings.Join(out, "\n")
}

// syntaxHighlight highlights source code using chroma, detecting the lexer
// from the language hint and falling back to content analysis. Output uses
// true color (24-bit) ANSI codes.
func syntaxHighlight(source, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}

	// Transform token backgrounds to match the code block background
	// (colorSurface0). Monokai's own #272822 clashes with our #313244.
	bgColour := chroma.MustParseColour("#313244")
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bgColour
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}

	return strings.TrimRight(buf.String(), "\n")
}
