package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/legalia/legalia/internal/keys"
	"github.com/legalia/legalia/internal/session"
)

// busyPlaceholder replaces the mode placeholder while an answer is pending
const busyPlaceholder = "Waiting for the answer…"

// Chat represents the right panel with the conversation and the input
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
	focused  bool
	snapshot session.Snapshot
	spinner  *SpinnerState
	now      func() time.Time
}

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Describe tu consulta legal..."
	ti.CharLimit = MaxInputChars
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""
	// Enter submits; newlines come from shift/alt+enter.
	ti.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
		spinner:  NewSpinnerState(),
		now:      time.Now,
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	ctx := GetViewContext()

	// Chat panel height (excluding input area which is separate)
	chatPanelHeight := height - InputTotalHeight

	innerWidth := ctx.InnerWidth(width)
	viewportHeight := ctx.InnerHeight(chatPanelHeight)
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(innerWidth)
	c.viewport.SetHeight(viewportHeight)

	// Input width accounts for its own border AND padding
	c.input.SetWidth(ctx.InnerWidth(width) - InputPaddingWidth)

	ctx.Log("Chat.SetSize",
		"outerWidth", width,
		"outerHeight", height,
		"viewportWidth", c.viewport.Width(),
		"viewportHeight", c.viewport.Height(),
	)
	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused && !c.snapshot.Busy {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetSnapshot replaces the rendered conversation. It returns the animation
// command to start when a consultation begins or ends.
func (c *Chat) SetSnapshot(snap session.Snapshot) tea.Cmd {
	wasBusy := c.snapshot.Busy
	c.snapshot = snap

	var cmd tea.Cmd
	switch {
	case snap.Busy && !wasBusy:
		c.spinner.StartTime = c.now()
		c.spinner.Idx = 0
		c.spinner.Tick = 0
		c.spinner.FlashFrame = -1
		c.input.Blur()
		cmd = StopwatchTick()
	case !snap.Busy && wasBusy:
		c.spinner.Elapsed = c.now().Sub(c.spinner.StartTime)
		if n := len(snap.Messages); n > 0 && !snap.Messages[n-1].Failed && snap.Messages[n-1].Role == session.RoleAssistant {
			c.spinner.FlashFrame = 0
			cmd = CompletionFlashTick()
		}
		if c.focused {
			cmd = tea.Batch(cmd, c.input.Focus())
		}
	}

	if snap.Busy {
		c.input.Placeholder = busyPlaceholder
	} else {
		c.input.Placeholder = snap.ActiveMode.Placeholder
	}

	c.updateContent()
	return cmd
}

// Snapshot returns the conversation currently displayed
func (c *Chat) Snapshot() session.Snapshot {
	return c.snapshot
}

// GetInput returns the current input text
func (c *Chat) GetInput() string {
	return c.input.Value()
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetInput sets the input field value
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// Placeholder returns the input placeholder text
func (c *Chat) Placeholder() string {
	return c.input.Placeholder
}

func (c *Chat) updateContent() {
	wrapWidth := c.viewport.Width()
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	var content string
	if len(c.snapshot.Messages) == 0 {
		content = renderWelcome(c.snapshot.ActiveMode, wrapWidth)
	} else {
		content = renderMessages(c.snapshot.Messages, wrapWidth, c.spinner.Idx, c.now())
		if c.IsCompletionFlashing() {
			if flash := renderCompletionFlash(c.spinner.FlashFrame, c.spinner.Elapsed); flash != "" {
				content += "\n" + flash
			}
		}
	}

	// Follow new output unless the user scrolled up.
	follow := c.viewport.AtBottom() || c.viewport.TotalLineCount() == 0
	c.viewport.SetContent(content)
	if follow || c.snapshot.Busy {
		c.viewport.GotoBottom()
	}
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	switch msg.(type) {
	case StopwatchTickMsg:
		return c, c.handleStopwatchTick()
	case CompletionFlashTickMsg:
		return c, c.handleCompletionFlashTick()
	}

	var cmds []tea.Cmd

	if paste, ok := msg.(tea.PasteMsg); ok {
		if !c.focused || c.snapshot.Busy {
			return c, nil
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(paste)
		return c, cmd
	}

	if c.focused {
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
			switch keyMsg.String() {
			case keys.PgUp, keys.PgDown, keys.CtrlUp, keys.CtrlDown,
				keys.Home, keys.End, keys.CtrlU, keys.CtrlD:
				var cmd tea.Cmd
				c.viewport, cmd = c.viewport.Update(msg)
				return c, cmd
			case keys.ShiftEnter, keys.AltEnter:
				if !c.snapshot.Busy {
					c.input.InsertString("\n")
				}
				return c, nil
			}

			// Input is disabled while a consultation is in flight
			if c.snapshot.Busy {
				return c, nil
			}

			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			return c, cmd
		}
	}

	// Update viewport for scrolling (non-key events, or when not focused)
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	chatPanelHeight := c.height - InputTotalHeight
	chatPanel := panelStyle.Width(c.width).Height(chatPanelHeight).Render(c.viewport.View())

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	inputArea := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, chatPanel, inputArea)
}

// ViewportContent returns the rendered conversation without the panel
func (c *Chat) ViewportContent() string {
	return strings.TrimRight(c.viewport.GetContent(), "\n")
}
