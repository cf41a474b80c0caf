package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/legalia/legalia/internal/keys"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/ui"
)

// Shortcut represents a keyboard shortcut with its metadata and handler.
// This is the single source of truth for global shortcuts.
type Shortcut struct {
	Key             string                              // The key binding (e.g., "tab", "ctrl+l")
	DisplayKey      string                              // Display name in help (e.g., "Ctrl+L"); defaults to Key
	Description     string                              // Human-readable description
	Category        string                              // Section for /help grouping
	RequiresSidebar bool                                // Must not be in chat focus
	RequiresIdle    bool                                // No consultation in flight
	Handler         func(m *Model) (tea.Model, tea.Cmd) // Action to perform
}

// Categories for organizing shortcuts in the help output
const (
	CategoryNavigation   = "Navigation"
	CategoryConversation = "Conversation"
	CategoryGeneral      = "General"
)

// categoryOrder defines the display order of categories
var categoryOrder = []string{
	CategoryNavigation,
	CategoryConversation,
	CategoryGeneral,
}

// ShortcutRegistry is the central registry of global keyboard shortcuts.
// Keys not listed here go to the focused panel.
var ShortcutRegistry = []Shortcut{
	// Navigation
	{
		Key:         keys.Tab,
		DisplayKey:  "Tab",
		Description: "Switch between modes and chat",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
	},
	{
		Key:         keys.ShiftTab,
		DisplayKey:  "Shift+Tab",
		Description: "Switch between modes and chat",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
	},

	// Conversation
	{
		Key:          keys.CtrlL,
		DisplayKey:   "Ctrl+L",
		Description:  "Clear the conversation",
		Category:     CategoryConversation,
		RequiresIdle: true,
		Handler:      shortcutClear,
	},
	{
		Key:         keys.CtrlY,
		DisplayKey:  "Ctrl+Y",
		Description: "Copy the last answer",
		Category:    CategoryConversation,
		Handler:     shortcutCopyAnswer,
	},

	// General
	{
		Key:         keys.CtrlT,
		DisplayKey:  "Ctrl+T",
		Description: "Toggle dark/light theme",
		Category:    CategoryGeneral,
		Handler:     shortcutTheme,
	},
	{
		Key:         keys.CtrlC,
		DisplayKey:  "Ctrl+C",
		Description: "Quit",
		Category:    CategoryGeneral,
		Handler:     shortcutQuit,
	},
	{
		Key:             "q",
		DisplayKey:      "q",
		Description:     "Quit (from the mode list)",
		Category:        CategoryGeneral,
		RequiresSidebar: true,
		Handler:         shortcutQuit,
	},
}

// DisplayOnlyShortcuts are listed in help but handled by the panels.
var DisplayOnlyShortcuts = []Shortcut{
	{DisplayKey: "Enter", Description: "Send the question (chat) or switch mode (modes)", Category: CategoryNavigation},
	{DisplayKey: "Alt+Enter", Description: "Insert a newline", Category: CategoryConversation},
	{DisplayKey: "PgUp/PgDn", Description: "Scroll the conversation", Category: CategoryConversation},
	{DisplayKey: "1-7", Description: "Jump to a mode (modes)", Category: CategoryNavigation},
}

// ExecuteShortcut finds and executes a shortcut by key.
// Returns (model, cmd, true) if the shortcut was found and executed.
// Returns (model, nil, false) if the shortcut was not found or guards failed.
func (m *Model) ExecuteShortcut(key string) (tea.Model, tea.Cmd, bool) {
	for _, s := range ShortcutRegistry {
		if s.Key != key {
			continue
		}
		if s.RequiresSidebar && m.focus == FocusChat {
			return m, nil, false
		}
		if s.RequiresIdle && m.session().Busy() {
			logger.WithComponent("app").Debug("shortcut blocked while busy", "key", key)
			return m, m.ShowFlashWarning(waitForAnswerText), true
		}
		result, cmd := s.Handler(m)
		return result, cmd, true
	}
	return m, nil, false
}

// helpText renders the shortcuts and slash commands as markdown for /help.
func helpText() string {
	var sb strings.Builder
	sb.WriteString("**Keyboard shortcuts**\n")

	all := append(append([]Shortcut{}, ShortcutRegistry...), DisplayOnlyShortcuts...)
	for _, category := range categoryOrder {
		fmt.Fprintf(&sb, "\n%s:\n", category)
		seen := make(map[string]bool)
		for _, s := range all {
			if s.Category != category || seen[s.Description] {
				continue
			}
			seen[s.Description] = true
			display := s.DisplayKey
			if display == "" {
				display = s.Key
			}
			fmt.Fprintf(&sb, "- %s: %s\n", display, s.Description)
		}
	}

	sb.WriteString("\n**Commands**\n\n")
	for _, cmd := range getSlashCommands() {
		fmt.Fprintf(&sb, "- /%s: %s\n", cmd.usage, cmd.description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// Shortcut Handlers
// =============================================================================

func shortcutToggleFocus(m *Model) (tea.Model, tea.Cmd) {
	if m.focus == FocusChat {
		m.setFocus(FocusSidebar)
	} else {
		m.setFocus(FocusChat)
	}
	return m, nil
}

func shortcutClear(m *Model) (tea.Model, tea.Cmd) {
	m.session().Clear()
	return m, tea.Batch(m.refresh(), m.ShowFlashInfo("Conversation cleared"))
}

func shortcutCopyAnswer(m *Model) (tea.Model, tea.Cmd) {
	answer, ok := m.session().Snapshot().LastAnswer()
	if !ok {
		return m, m.ShowFlashWarning("No answer to copy yet")
	}
	if err := m.copyText(answer); err != nil {
		logger.WithComponent("app").Warn("copy failed", "error", err)
		return m, m.ShowFlashError("Could not copy to clipboard")
	}
	return m, m.ShowFlashSuccess("Answer copied to clipboard")
}

func shortcutTheme(m *Model) (tea.Model, tea.Cmd) {
	name := ui.ToggleTheme()
	m.config.SetTheme(string(name))
	if err := m.config.Save(); err != nil {
		logger.WithComponent("app").Warn("failed to save theme", "error", err)
		return m, m.ShowFlashError("Theme changed but could not be saved")
	}
	return m, m.ShowFlashInfo(fmt.Sprintf("Theme: %s", ui.CurrentTheme().Name))
}

func shortcutQuit(m *Model) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}
