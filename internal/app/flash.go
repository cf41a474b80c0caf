package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/legalia/legalia/internal/ui"
)

// waitForAnswerText is flashed when an action needs the session to be idle
const waitForAnswerText = "Wait for the current answer to finish."

// ShowFlash displays a flash message in the footer and returns a command to start the auto-dismiss timer
func (m *Model) ShowFlash(text string, flashType ui.FlashType) tea.Cmd {
	m.footer.SetFlash(text, flashType)
	return ui.FlashTick()
}

// ShowFlashWarningFor displays a warning that stays up for d
func (m *Model) ShowFlashWarningFor(text string, d time.Duration) tea.Cmd {
	m.footer.SetFlashWithDuration(text, ui.FlashWarning, d)
	return ui.FlashTick()
}

// ShowFlashError displays an error flash message
func (m *Model) ShowFlashError(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashError)
}

// ShowFlashWarning displays a warning flash message
func (m *Model) ShowFlashWarning(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashWarning)
}

// ShowFlashInfo displays an info flash message
func (m *Model) ShowFlashInfo(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashInfo)
}

// ShowFlashSuccess displays a success flash message
func (m *Model) ShowFlashSuccess(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashSuccess)
}
