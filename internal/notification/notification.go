// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/legalia/legalia/internal/logger"
)

// AppName is the title used for every notification.
const AppName = "Legal IA"

// notifyFunc is swapped in tests.
var notifyFunc = beeep.Notify

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title)
	// Empty icon lets beeep pick the platform default.
	err := notifyFunc(title, message, "")
	if err != nil {
		log.Warn("notification failed", "error", err)
	}
	return err
}

// AnswerReady notifies that a consultation in the given mode was answered.
func AnswerReady(modeName string) error {
	return Send(AppName, "Your "+modeName+" answer is ready")
}

// ConsultationFailed notifies that a consultation ended with an error.
func ConsultationFailed(modeName string) error {
	return Send(AppName, "Your "+modeName+" consultation could not be completed")
}
