package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// AppTitle is shown at the left of the header.
const AppTitle = "Legal IA"

// Header represents the top header bar
type Header struct {
	width     int
	modeLabel string
	model     string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetModeLabel sets the active mode label, e.g. "Derecho Laboral 💼"
func (h *Header) SetModeLabel(label string) {
	h.modeLabel = label
}

// SetModel sets the model id shown muted after the mode label
func (h *Header) SetModel(model string) {
	h.model = model
}

// View renders the header
func (h *Header) View() string {
	titleText := " " + AppTitle
	var rightText string
	if h.modeLabel != "" {
		rightText = h.modeLabel
	}
	if h.model != "" {
		if rightText != "" {
			rightText += " "
		}
		rightText += "(" + h.model + ")"
	}
	if rightText != "" {
		rightText += " "
	}

	// Mode icons are wide runes, so pad by display width rather than bytes.
	paddingLen := h.width - runewidth.StringWidth(titleText) - runewidth.StringWidth(rightText)
	if paddingLen < 1 {
		paddingLen = 1
	}

	fullContent := titleText + strings.Repeat(" ", paddingLen) + rightText
	return h.renderGradient(fullContent)
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// The model id portion is muted.
func (h *Header) renderGradient(content string) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	// End color: fade to the main background
	endR, endG, endB := parseHexColor(theme.Bg)

	textColor := lipgloss.Color(theme.Text)
	mutedColor := lipgloss.Color(theme.TextMuted)

	modelStart := -1
	if h.model != "" {
		modelStart = strings.LastIndex(content, "("+h.model+")")
	}
	titleEnd := len(" " + AppTitle)

	// Step over grapheme clusters so emoji with variation selectors keep
	// a single background cell.
	total := uniseg.GraphemeClusterCount(content)
	var result strings.Builder
	gr := uniseg.NewGraphemes(content)
	i := 0
	for gr.Next() {
		offset, _ := gr.Positions()
		t := float64(i) / float64(total)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)
		bgColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))

		style := lipgloss.NewStyle().
			Background(bgColor).
			Bold(offset < titleEnd)

		if modelStart >= 0 && offset >= modelStart {
			style = style.Foreground(mutedColor)
		} else {
			style = style.Foreground(textColor)
		}

		result.WriteString(style.Render(gr.Str()))
		i++
	}

	return result.String()
}
