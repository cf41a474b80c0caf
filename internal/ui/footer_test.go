package ui

import (
	"strings"
	"testing"
	"time"
)

func TestNewFooter(t *testing.T) {
	footer := NewFooter()

	if footer == nil {
		t.Fatal("NewFooter() returned nil")
	}
	if footer.flashMessage != nil {
		t.Error("Expected no flash message initially")
	}
}

func TestFooter_SetWidth(t *testing.T) {
	footer := NewFooter()

	footer.SetWidth(120)

	if footer.width != 120 {
		t.Errorf("Expected width 120, got %d", footer.width)
	}
}

func TestFooter_SetFlash(t *testing.T) {
	footer := NewFooter()

	footer.SetFlash("Test error message", FlashError)

	if footer.flashMessage == nil {
		t.Fatal("Expected flash message to be set")
	}
	if footer.flashMessage.Text != "Test error message" {
		t.Errorf("Expected text 'Test error message', got %q", footer.flashMessage.Text)
	}
	if footer.flashMessage.Type != FlashError {
		t.Errorf("Expected type FlashError, got %v", footer.flashMessage.Type)
	}
	if footer.flashMessage.Duration != DefaultFlashDuration {
		t.Errorf("Expected duration %v, got %v", DefaultFlashDuration, footer.flashMessage.Duration)
	}
}

func TestFooter_SetFlashWithDuration(t *testing.T) {
	footer := NewFooter()
	customDuration := 10 * time.Second

	footer.SetFlashWithDuration("Custom duration", FlashInfo, customDuration)

	if footer.flashMessage.Duration != customDuration {
		t.Errorf("Expected duration %v, got %v", customDuration, footer.flashMessage.Duration)
	}
}

func TestFooter_ClearFlash(t *testing.T) {
	footer := NewFooter()

	footer.SetFlash("Test message", FlashInfo)
	if !footer.HasFlash() {
		t.Error("Expected HasFlash() to return true")
	}

	footer.ClearFlash()
	if footer.HasFlash() {
		t.Error("Expected HasFlash() to return false after ClearFlash()")
	}
}

func TestFlashMessage_IsExpired(t *testing.T) {
	msg := &FlashMessage{
		Text:      "Test",
		Type:      FlashInfo,
		CreatedAt: time.Now(),
		Duration:  5 * time.Second,
	}
	if msg.IsExpired() {
		t.Error("New message should not be expired")
	}

	expiredMsg := &FlashMessage{
		Text:      "Test",
		Type:      FlashInfo,
		CreatedAt: time.Now().Add(-10 * time.Second),
		Duration:  5 * time.Second,
	}
	if !expiredMsg.IsExpired() {
		t.Error("Old message should be expired")
	}
}

func TestFooter_ClearIfExpired(t *testing.T) {
	footer := NewFooter()

	footer.SetFlash("Not expired", FlashInfo)
	if footer.ClearIfExpired() {
		t.Error("Should not clear non-expired message")
	}

	footer.flashMessage = &FlashMessage{
		Text:      "Expired",
		Type:      FlashInfo,
		CreatedAt: time.Now().Add(-10 * time.Second),
		Duration:  5 * time.Second,
	}
	if !footer.ClearIfExpired() {
		t.Error("Should clear expired message")
	}
	if footer.HasFlash() {
		t.Error("Flash should be cleared")
	}
}

func TestFooter_FlashTypes(t *testing.T) {
	tests := []struct {
		name         string
		flashType    FlashType
		expectedIcon string
	}{
		{"Error", FlashError, "✕"},
		{"Warning", FlashWarning, "⚠"},
		{"Info", FlashInfo, "ℹ"},
		{"Success", FlashSuccess, "✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			footer := NewFooter()
			footer.SetWidth(80)
			footer.SetFlash("Test message", tt.flashType)

			view := footer.View()
			if !strings.Contains(view, tt.expectedIcon) {
				t.Errorf("Expected %s flash to contain icon %q", tt.name, tt.expectedIcon)
			}
			if strings.Contains(stripANSI(view), "send") {
				t.Error("Flash should replace the key bindings")
			}
		})
	}
}

func TestFlashTick(t *testing.T) {
	if FlashTick() == nil {
		t.Error("FlashTick() should return a command")
	}
}

func TestFooter_Bindings(t *testing.T) {
	tests := []struct {
		name           string
		sidebarFocused bool
		busy           bool
		want           []string
		notWant        []string
	}{
		{"chat idle", false, false, []string{"send", "copy answer", "clear", "modes"}, []string{"switch"}},
		{"chat busy", false, true, []string{"scroll", "quit"}, []string{"send"}},
		{"sidebar", true, false, []string{"select mode", "switch", "chat"}, []string{"send"}},
		{"sidebar while busy", true, true, []string{"select mode"}, []string{"send"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			footer := NewFooter()
			footer.SetWidth(200)
			footer.SetContext(tt.sidebarFocused, tt.busy)

			view := stripANSI(footer.View())
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("footer should contain %q, got %q", w, view)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(view, nw) {
					t.Errorf("footer should not contain %q, got %q", nw, view)
				}
			}
		})
	}
}

func TestFooter_Disclaimer(t *testing.T) {
	footer := NewFooter()
	footer.SetContext(true, false)

	footer.SetWidth(200)
	if !strings.Contains(stripANSI(footer.View()), Disclaimer) {
		t.Error("wide footer should show the disclaimer")
	}

	footer.SetWidth(40)
	if strings.Contains(stripANSI(footer.View()), Disclaimer) {
		t.Error("narrow footer should drop the disclaimer")
	}
}
