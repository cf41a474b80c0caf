// Package clipboard copies text to and from the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/legalia/legalia/internal/logger"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init initializes the clipboard. It is safe to call multiple times; the
// first result is cached.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			logger.WithComponent("clipboard").Warn("clipboard unavailable", "error", err)
			initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
			return
		}
		logger.WithComponent("clipboard").Debug("clipboard initialized")
	})
	return initErr
}

// WriteText places text on the clipboard.
func WriteText(text string) error {
	if err := Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	logger.WithComponent("clipboard").Debug("copied text", "chars", len(text))
	return nil
}

// ReadText reads text from the clipboard. An empty clipboard returns "".
func ReadText() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	b := clipboard.Read(clipboard.FmtText)
	if b == nil {
		return "", nil
	}
	return string(b), nil
}
