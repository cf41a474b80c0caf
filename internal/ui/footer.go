package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Disclaimer is shown in the footer whenever there is room for it.
const Disclaimer = "Legal IA can make mistakes. Verify the information."

// DefaultFlashDuration is how long a flash message stays visible
const DefaultFlashDuration = 3 * time.Second

// FlashType selects the icon and color of a flash message
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// FlashMessage is a transient status line that replaces the key bindings
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration
func (m *FlashMessage) IsExpired() bool {
	return time.Since(m.CreatedAt) > m.Duration
}

// FlashTickMsg is sent periodically while a flash message is visible
type FlashTickMsg time.Time

// FlashTick returns a command that checks flash expiry once per second
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width          int
	sidebarFocused bool // Whether the mode list has focus
	busy           bool // Whether a consultation is in flight
	flashMessage   *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(sidebarFocused, busy bool) {
	f.sidebarFocused = sidebarFocused
	f.busy = busy
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetFlash shows a flash message for DefaultFlashDuration
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.SetFlashWithDuration(text, flashType, DefaultFlashDuration)
}

// SetFlashWithDuration shows a flash message for a custom duration
func (f *Footer) SetFlashWithDuration(text string, flashType FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      flashType,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ClearFlash removes the flash message
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether a flash message is set
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearIfExpired clears an expired flash message and reports whether it did
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

// Bindings returns the key bindings for the current context
func (f *Footer) Bindings() []KeyBinding {
	switch {
	case f.sidebarFocused:
		return []KeyBinding{
			{Key: "↑/↓", Desc: "select mode"},
			{Key: "enter", Desc: "switch"},
			{Key: "tab", Desc: "chat"},
			{Key: "q", Desc: "quit"},
		}
	case f.busy:
		return []KeyBinding{
			{Key: "tab", Desc: "modes"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	default:
		return []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "opt+enter", Desc: "newline"},
			{Key: "tab", Desc: "modes"},
			{Key: "ctrl+y", Desc: "copy answer"},
			{Key: "ctrl+l", Desc: "clear"},
			{Key: "ctrl+t", Desc: "theme"},
			{Key: "pgup/dn", Desc: "scroll"},
		}
	}
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		return FooterStyle.Width(f.width).Render(f.renderFlash())
	}

	var parts []string
	for _, b := range f.Bindings() {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}
	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	// Padding(0, 1) takes two columns.
	room := f.width - 2 - lipgloss.Width(content)
	if room >= runewidth.StringWidth(Disclaimer)+2 {
		gap := room - runewidth.StringWidth(Disclaimer)
		content += strings.Repeat(" ", gap) + FooterDisclaimerStyle.Render(Disclaimer)
	}

	return FooterStyle.Width(f.width).Render(content)
}

func (f *Footer) renderFlash() string {
	var icon string
	style := FooterDescStyle
	switch f.flashMessage.Type {
	case FlashError:
		icon = "✕"
		style = StatusErrorStyle
	case FlashWarning:
		icon = "⚠"
		style = StatusWarningStyle
	case FlashSuccess:
		icon = "✓"
		style = FooterKeyStyle
	default:
		icon = "ℹ"
	}
	return style.Render(icon + " " + f.flashMessage.Text)
}
