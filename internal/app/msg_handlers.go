package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/notification"
)

// startupWarningDuration keeps the missing-credential warning up longer
// than an ordinary flash.
const startupWarningDuration = 10 * time.Second

// consultContext bounds one consultation. timeout comes from
// Config.RequestTimeout, which is always positive. The transport applies the
// same timeout, so the extra second lets its error surface first.
func consultContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout+time.Second)
}

// handleAnswer resolves the pending placeholder and, when enabled, sends a
// desktop notification.
func (m *Model) handleAnswer(msg AnswerMsg) tea.Cmd {
	m.controller.Finish(msg.Outcome)
	cmds := []tea.Cmd{m.refresh()}

	if msg.Outcome.Err != nil {
		logger.WithComponent("app").Debug("answer failed", "correlationID", string(msg.Outcome.ID))
	}

	if m.config.GetNotificationsEnabled() {
		notify, modeName, answered := m.notify, msg.ModeName, msg.Outcome.Err == nil
		cmds = append(cmds, func() tea.Msg {
			_ = notify(modeName, answered)
			return nil
		})
	}

	return tea.Batch(cmds...)
}

// notifyDesktop is the production notifier. Failures are logged by the
// notification package.
func notifyDesktop(modeName string, answered bool) error {
	if answered {
		return notification.AnswerReady(modeName)
	}
	return notification.ConsultationFailed(modeName)
}
