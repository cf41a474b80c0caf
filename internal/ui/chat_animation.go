package ui

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// StopwatchTickMsg is sent to update the animated waiting display
type StopwatchTickMsg time.Time

// CompletionFlashTickMsg is sent to animate the completion checkmark flash
type CompletionFlashTickMsg time.Time

// spinnerFrames are the characters used for the shimmering spinner animation
var spinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// spinnerFrameHoldTimes defines how long each frame should be held (in ticks)
var spinnerFrameHoldTimes = []int{2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2}

// SpinnerState tracks the waiting spinner and the completion flash.
type SpinnerState struct {
	Idx        int // Current spinner frame index
	Tick       int // Tick counter for frame hold timing
	StartTime  time.Time
	Elapsed    time.Duration // Duration of the last completed consultation
	FlashFrame int           // Completion flash animation: -1 = inactive, 0-2 = animation frames
}

// NewSpinnerState creates a new SpinnerState.
func NewSpinnerState() *SpinnerState {
	return &SpinnerState{
		FlashFrame: -1,
	}
}

// StopwatchTick returns a command that sends a tick message after a delay
func StopwatchTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return StopwatchTickMsg(t)
	})
}

// CompletionFlashTick returns a command that sends a completion flash tick
func CompletionFlashTick() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(t time.Time) tea.Msg {
		return CompletionFlashTickMsg(t)
	})
}

// formatElapsed formats a duration for display (e.g., "12s", "1m30s")
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%ds", secs/60, secs%60)
}

// renderCompletionFlash renders the checkmark shown briefly after an answer
func renderCompletionFlash(frame int, elapsed time.Duration) string {
	meta := lipgloss.NewStyle().Foreground(ColorTextMuted).Render("(" + formatElapsed(elapsed) + ")")
	switch frame {
	case 0:
		style := lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)
		return style.Render("✓") + " " + lipgloss.NewStyle().Foreground(ColorSecondary).Italic(true).Render("Answered") + " " + meta
	case 1:
		return lipgloss.NewStyle().Foreground(ColorSecondary).Render("✓") + " " + meta
	default:
		return ""
	}
}

// IsWaiting returns whether an answer is pending
func (c *Chat) IsWaiting() bool {
	return c.snapshot.Busy
}

// IsCompletionFlashing returns whether the completion flash animation is active
func (c *Chat) IsCompletionFlashing() bool {
	return c.spinner.FlashFrame >= 0
}

// handleStopwatchTick advances the spinner while an answer is pending
func (c *Chat) handleStopwatchTick() tea.Cmd {
	if !c.snapshot.Busy {
		return nil
	}

	// Advance the spinner with easing (some frames hold longer)
	c.spinner.Tick++
	holdTime := spinnerFrameHoldTimes[c.spinner.Idx%len(spinnerFrameHoldTimes)]
	if c.spinner.Tick >= holdTime {
		c.spinner.Tick = 0
		c.spinner.Idx = (c.spinner.Idx + 1) % len(spinnerFrames)
	}
	c.updateContent()
	return StopwatchTick()
}

// handleCompletionFlashTick handles the completion flash animation tick
func (c *Chat) handleCompletionFlashTick() tea.Cmd {
	if c.spinner.FlashFrame < 0 {
		return nil
	}

	c.spinner.FlashFrame++
	if c.spinner.FlashFrame >= 3 {
		c.spinner.FlashFrame = -1
	}
	c.updateContent()
	if c.spinner.FlashFrame >= 0 {
		return CompletionFlashTick()
	}
	return nil
}
