package ui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/session"
)

// Role labels shown above each message
const (
	UserLabel      = "You"
	AssistantLabel = "Legal IA"
)

// Compiled regex patterns for markdown parsing
var (
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	underscoreItalic  = regexp.MustCompile(`(?:^|[^a-zA-Z0-9_])_([^_]+)_(?:[^a-zA-Z0-9_]|$)`)
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	numberedPattern   = regexp.MustCompile(`^(\d{1,2})\. `)
)

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// renderInlineMarkdown applies inline formatting (bold, italic, code, links) to a line
func renderInlineMarkdown(line string) string {
	// Protect code spans from other formatting
	type codeSpan struct {
		placeholder string
		rendered    string
	}
	var codeSpans []codeSpan

	line = inlineCodePattern.ReplaceAllStringFunc(line, func(match string) string {
		code := inlineCodePattern.FindStringSubmatch(match)[1]
		placeholder := fmt.Sprintf("\x00CODE%d\x00", len(codeSpans))
		codeSpans = append(codeSpans, codeSpan{
			placeholder: placeholder,
			rendered:    MarkdownInlineCodeStyle.Render(code),
		})
		return placeholder
	})

	// Process bold (**text**)
	line = boldPattern.ReplaceAllStringFunc(line, func(match string) string {
		text := boldPattern.FindStringSubmatch(match)[1]
		return MarkdownBoldStyle.Render(text)
	})

	// Process italic with underscores (_text_), only at word boundaries
	line = underscoreItalic.ReplaceAllStringFunc(line, func(match string) string {
		text := underscoreItalic.FindStringSubmatch(match)[1]
		start := strings.Index(match, "_"+text+"_")
		prefix := match[:start]
		suffix := match[start+len(text)+2:]
		return prefix + MarkdownItalicStyle.Render(text) + suffix
	})

	// Process links [text](url)
	line = linkPattern.ReplaceAllStringFunc(line, func(match string) string {
		parts := linkPattern.FindStringSubmatch(match)
		return MarkdownLinkStyle.Render(parts[1]) + " (" + MarkdownLinkStyle.Render(parts[2]) + ")"
	})

	for _, cs := range codeSpans {
		line = strings.Replace(line, cs.placeholder, cs.rendered, 1)
	}

	return line
}

// wrapText wraps text to the specified width, handling ANSI escape codes
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// indentContinuation indents every wrapped line after the first
func indentContinuation(wrapped string, indent int) string {
	lines := strings.Split(wrapped, "\n")
	pad := strings.Repeat(" ", indent)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// renderMarkdownLine renders a single line with markdown formatting
func renderMarkdownLine(line string, width int) string {
	trimmed := strings.TrimSpace(line)

	// Headers - don't wrap, they should be concise
	switch {
	case strings.HasPrefix(trimmed, "#### "):
		return MarkdownH4Style.Render(strings.TrimPrefix(trimmed, "#### "))
	case strings.HasPrefix(trimmed, "### "):
		return MarkdownH3Style.Render(strings.TrimPrefix(trimmed, "### "))
	case strings.HasPrefix(trimmed, "## "):
		return MarkdownH2Style.Render(strings.TrimPrefix(trimmed, "## "))
	case strings.HasPrefix(trimmed, "# "):
		return MarkdownH1Style.Render(strings.TrimPrefix(trimmed, "# "))
	}

	// Horizontal rule
	if trimmed == "---" || trimmed == "***" || trimmed == "___" {
		return MarkdownHRStyle.Render("────────────────────────────────")
	}

	// Blockquote
	if strings.HasPrefix(trimmed, "> ") {
		content := strings.TrimPrefix(trimmed, "> ")
		return MarkdownBlockquoteStyle.Render(wrapText(renderInlineMarkdown(content), width-4))
	}

	// Unordered list items
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		bullet := MarkdownListBulletStyle.Render("•")
		wrapped := wrapText(renderInlineMarkdown(trimmed[2:]), width-6)
		return "  " + bullet + " " + indentContinuation(wrapped, 4)
	}

	// Numbered list items
	if m := numberedPattern.FindStringSubmatch(trimmed); m != nil {
		number := MarkdownListBulletStyle.Render(m[1] + ".")
		wrapped := wrapText(renderInlineMarkdown(trimmed[len(m[0]):]), width-6)
		return "  " + number + " " + indentContinuation(wrapped, len(m[1])+4)
	}

	// Regular line with inline formatting and wrapping
	return wrapText(renderInlineMarkdown(line), width)
}

// renderMarkdown renders markdown content with syntax-highlighted code blocks
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var result strings.Builder
	lines := strings.Split(content, "\n")
	inCodeBlock := false
	codeBlockLang := ""
	var codeBlockContent strings.Builder

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				codeBlockContent.Reset()
			} else {
				inCodeBlock = false
				if result.Len() > 0 {
					result.WriteString("\n")
				}
				result.WriteString(highlightCode(codeBlockContent.String(), codeBlockLang))
				result.WriteString("\n")
				codeBlockLang = ""
			}
			continue
		}

		if inCodeBlock {
			if codeBlockContent.Len() > 0 {
				codeBlockContent.WriteString("\n")
			}
			codeBlockContent.WriteString(line)
		} else {
			result.WriteString(renderMarkdownLine(line, width))
			result.WriteString("\n")
		}
	}

	// If we ended while still in a code block, output whatever we have
	if inCodeBlock {
		result.WriteString(highlightCode(codeBlockContent.String(), codeBlockLang))
	}

	return strings.TrimRight(result.String(), "\n")
}

// renderWelcome renders the empty-conversation screen for the active mode
func renderWelcome(mode modes.Mode, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(MarkdownH2Style.Render("Welcome to " + AppTitle))
	sb.WriteString("\n\n")
	sb.WriteString(ChatWelcomeStyle.Render("Mode: "))
	sb.WriteString(keyStyle.Render(mode.Label()))
	sb.WriteString("\n")
	if mode.ResponseFocus != "" {
		sb.WriteString(ChatWelcomeStyle.Italic(true).Render(wrapText(mode.ResponseFocus, width)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(ChatWelcomeStyle.Render("  • Type your question and press "))
	sb.WriteString(keyStyle.Render("enter"))
	sb.WriteString("\n")
	sb.WriteString(ChatWelcomeStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("tab"))
	sb.WriteString(ChatWelcomeStyle.Render(" to pick another consultation mode"))
	sb.WriteString("\n")
	sb.WriteString(ChatWelcomeStyle.Render("  • Type "))
	sb.WriteString(keyStyle.Render("/help"))
	sb.WriteString(ChatWelcomeStyle.Render(" for commands"))
	return sb.String()
}

// renderPending renders the placeholder of an in-flight answer: spinner,
// the mode's loading caption and a stopwatch.
func renderPending(caption string, frameIdx int, elapsed time.Duration, width int) string {
	frame := spinnerFrames[frameIdx%len(spinnerFrames)]

	spinnerStyle := lipgloss.NewStyle().
		Foreground(ColorUser).
		Bold(true)
	metaStyle := lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	line := spinnerStyle.Render(frame) + " " +
		StatusLoadingStyle.Render(caption) + " " +
		metaStyle.Render("("+formatElapsed(elapsed)+")")
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// renderMessage renders one conversation entry
func renderMessage(msg session.Message, width int, frameIdx int, now time.Time) string {
	switch msg.Role {
	case session.RoleSystem:
		return ChatNoticeStyle.Render(wrapText("ℹ "+msg.Text, width))

	case session.RoleUser:
		return ChatUserStyle.Render(UserLabel+":") + "\n" +
			ChatMessageStyle.Render(wrapText(strings.TrimSpace(msg.Text), width))

	default:
		header := ChatAssistantStyle.Render(AssistantLabel + ":")
		switch {
		case msg.Pending:
			return header + "\n" + renderPending(msg.Text, frameIdx, now.Sub(msg.CreatedAt), width)
		case msg.Failed:
			return header + "\n" + StatusErrorStyle.Render(wrapText("✕ "+msg.Text, width))
		default:
			return header + "\n" + renderMarkdown(strings.TrimSpace(msg.Text), width)
		}
	}
}

// renderMessages renders the whole conversation separated by blank lines
func renderMessages(msgs []session.Message, width int, frameIdx int, now time.Time) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, renderMessage(m, width, frameIdx, now))
	}
	return strings.Join(parts, "\n\n")
}
