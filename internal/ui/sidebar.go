package ui

import (
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/legalia/legalia/internal/keys"
	"github.com/legalia/legalia/internal/modes"
)

// sidebarSpinnerFrames uses the same shimmering spinner as the chat panel
var sidebarSpinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// sidebarSpinnerHoldTimes defines how long each frame should be held (in ticks)
// First and last frames hold longer for a "breathing" effect
var sidebarSpinnerHoldTimes = []int{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3}

// SidebarTickMsg is sent to advance the spinner animation
type SidebarTickMsg time.Time

// SidebarTick returns a command that sends a tick message after a delay
func SidebarTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return SidebarTickMsg(t)
	})
}

// Sidebar represents the left panel with the consultation modes
type Sidebar struct {
	modes        []modes.Mode
	activeID     string
	selectedIdx  int
	width        int
	height       int
	focused      bool
	busy         bool
	scrollOffset int
	spinnerFrame int
	spinnerTick  int
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	return &Sidebar{}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height

	ctx := GetViewContext()
	ctx.Log("Sidebar.SetSize",
		"outerWidth", width,
		"outerHeight", height,
		"innerWidth", ctx.InnerWidth(width),
		"innerHeight", ctx.InnerHeight(height),
	)
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetModes replaces the listed modes and keeps the cursor in range
func (s *Sidebar) SetModes(list []modes.Mode) {
	s.modes = list
	if s.selectedIdx >= len(list) {
		s.selectedIdx = max(len(list)-1, 0)
	}
}

// SetActive marks the active mode and moves the cursor onto it
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
	for i, m := range s.modes {
		if m.ID == id {
			s.selectedIdx = i
			return
		}
	}
}

// SetBusy starts or stops the spinner next to the active mode
func (s *Sidebar) SetBusy(busy bool) {
	s.busy = busy
	if !busy {
		s.spinnerFrame = 0
		s.spinnerTick = 0
	}
}

// IsBusy reports whether the spinner is running
func (s *Sidebar) IsBusy() bool {
	return s.busy
}

// SelectedMode returns the mode under the cursor
func (s *Sidebar) SelectedMode() (modes.Mode, bool) {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.modes) {
		return modes.Mode{}, false
	}
	return s.modes[s.selectedIdx], true
}

// Update handles navigation keys while focused and spinner ticks
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	switch msg := msg.(type) {
	case SidebarTickMsg:
		if !s.busy {
			return s, nil
		}
		// Advance the spinner with easing (some frames hold longer)
		s.spinnerTick++
		holdTime := sidebarSpinnerHoldTimes[s.spinnerFrame%len(sidebarSpinnerHoldTimes)]
		if s.spinnerTick >= holdTime {
			s.spinnerTick = 0
			s.spinnerFrame = (s.spinnerFrame + 1) % len(sidebarSpinnerFrames)
		}
		return s, SidebarTick()

	case tea.KeyPressMsg:
		if !s.focused {
			return s, nil
		}

		switch key := msg.String(); key {
		case keys.Up, "k", keys.CtrlP:
			if s.selectedIdx > 0 {
				s.selectedIdx--
			}
		case keys.Down, "j", keys.CtrlN:
			if s.selectedIdx < len(s.modes)-1 {
				s.selectedIdx++
			}
		case keys.Home, "g":
			s.selectedIdx = 0
		case keys.End, "G":
			s.selectedIdx = max(len(s.modes)-1, 0)
		default:
			// Digits jump straight to a mode.
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(s.modes) {
				s.selectedIdx = n - 1
			}
		}
	}

	return s, nil
}

// View renders the sidebar
func (s *Sidebar) View() string {
	ctx := GetViewContext()

	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}

	innerWidth := ctx.InnerWidth(s.width)
	innerHeight := ctx.InnerHeight(s.height)

	var allLines []string
	allLines = append(allLines, PanelTitleStyle.Render("Modes"))
	selectedLine := 0

	// Leave room for the item padding and the two-column prefix.
	labelWidth := innerWidth - 4
	if labelWidth < 1 {
		labelWidth = 1
	}

	for i, m := range s.modes {
		prefix := "  "
		if m.ID == s.activeID {
			if s.busy {
				prefix = sidebarSpinnerFrames[s.spinnerFrame] + " "
			} else {
				prefix = "● "
			}
		}
		label := runewidth.Truncate(m.Label(), labelWidth, "…")

		if i == s.selectedIdx && s.focused {
			selectedLine = len(allLines)
			allLines = append(allLines, SidebarSelectedStyle.Width(innerWidth).Render(prefix+label))
			continue
		}
		if i == s.selectedIdx {
			selectedLine = len(allLines)
		}
		if m.ID == s.activeID {
			prefix = SidebarActiveMarkerStyle.Render(prefix)
		}
		allLines = append(allLines, SidebarItemStyle.Width(innerWidth).Render(prefix+label))
	}

	if s.focused {
		allLines = append(allLines, "", SidebarHintStyle.Render(" enter to switch"))
	}

	// Keep the selected mode visible
	visibleHeight := innerHeight
	if selectedLine < s.scrollOffset {
		s.scrollOffset = selectedLine
	} else if visibleHeight > 0 && selectedLine >= s.scrollOffset+visibleHeight {
		s.scrollOffset = selectedLine - visibleHeight + 1
	}
	maxScroll := max(len(allLines)-visibleHeight, 0)
	if s.scrollOffset > maxScroll {
		s.scrollOffset = maxScroll
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}

	if s.scrollOffset > 0 && s.scrollOffset < len(allLines) {
		allLines = allLines[s.scrollOffset:]
	}
	if visibleHeight > 0 && len(allLines) > visibleHeight {
		allLines = allLines[:visibleHeight]
	}

	// In lipgloss v2, Width/Height include borders, so pass full panel size
	return style.Width(s.width).Height(s.height).Render(strings.Join(allLines, "\n"))
}
