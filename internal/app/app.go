package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/legalia/legalia/internal/clipboard"
	"github.com/legalia/legalia/internal/config"
	"github.com/legalia/legalia/internal/consult"
	"github.com/legalia/legalia/internal/keys"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/session"
	"github.com/legalia/legalia/internal/ui"
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

// Model is the main Bubble Tea model
type Model struct {
	config     *config.Config
	controller *consult.Controller
	version    string

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat

	width  int
	height int
	focus  Focus

	// startupWarning is flashed once when the program starts
	startupWarning string

	// copyText writes to the system clipboard; replaced in tests
	copyText func(string) error
	// notify sends a desktop notification; replaced in tests
	notify func(modeName string, answered bool) error
}

// StartupMsg is sent on app start to show the configuration warning
type StartupMsg struct{}

// AnswerMsg carries the outcome of a consultation back to the event loop
type AnswerMsg struct {
	Outcome  consult.Outcome
	ModeName string
}

// New creates a new app model
func New(cfg *config.Config, ctrl *consult.Controller, version string) *Model {
	// Load saved theme from config, or use default
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	m := &Model{
		config:     cfg,
		controller: ctrl,
		version:    version,
		header:     ui.NewHeader(),
		footer:     ui.NewFooter(),
		sidebar:    ui.NewSidebar(),
		chat:       ui.NewChat(),
		focus:      FocusChat,
		copyText:   clipboard.WriteText,
		notify:     notifyDesktop,
	}

	logger.WithComponent("app").Info("app created", "version", version, "mode", ctrl.Session().ActiveMode().ID)
	m.header.SetModel(cfg.GetModel())
	m.sidebar.SetModes(ctrl.Session().Registry().All())
	m.chat.SetFocused(true)
	m.refresh()

	return m
}

// SetStartupWarning sets the message flashed when the program starts.
func (m *Model) SetStartupWarning(warning string) {
	m.startupWarning = warning
}

// session returns the conversation the model renders
func (m *Model) session() *session.Session {
	return m.controller.Session()
}

// refresh pushes the current session snapshot into every component and
// returns the animation commands the chat panel asks for.
func (m *Model) refresh() tea.Cmd {
	snap := m.session().Snapshot()

	m.header.SetModeLabel(snap.ActiveMode.Label())
	m.sidebar.SetActive(snap.ActiveMode.ID)
	wasBusy := m.sidebar.IsBusy()
	m.sidebar.SetBusy(snap.Busy)

	cmd := m.chat.SetSnapshot(snap)
	if snap.Busy && !wasBusy {
		cmd = tea.Batch(cmd, ui.SidebarTick())
	}
	return cmd
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		return StartupMsg{}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()

	case StartupMsg:
		if m.startupWarning != "" {
			logger.WithComponent("app").Warn("startup warning", "warning", m.startupWarning)
			return m, m.ShowFlashWarningFor(m.startupWarning, startupWarningDuration)
		}

	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	case tea.PasteMsg:
		if m.focus == FocusChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			m.session().SetDraft(m.chat.GetInput())
			return m, cmd
		}

	case AnswerMsg:
		return m, m.handleAnswer(msg)

	case ui.FlashTickMsg:
		if m.footer.ClearIfExpired() || !m.footer.HasFlash() {
			return m, nil
		}
		return m, ui.FlashTick()

	case ui.SidebarTickMsg:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case ui.StopwatchTickMsg, ui.CompletionFlashTickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	default:
		// Mouse wheel and other events scroll the conversation
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress routes a key to a shortcut or to the focused panel
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if model, cmd, handled := m.ExecuteShortcut(key); handled {
		return model, cmd
	}

	if m.focus == FocusSidebar {
		if key == keys.Enter {
			return m, m.selectMode()
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	if key == keys.Enter {
		return m, m.submit(m.chat.GetInput())
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	m.session().SetDraft(m.chat.GetInput())
	return m, cmd
}

// setFocus moves focus between the mode list and the chat
func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	m.chat.SetFocused(f == FocusChat)
}

// selectMode switches to the mode under the sidebar cursor and returns
// focus to the chat. Modes cannot change while an answer is pending.
func (m *Model) selectMode() tea.Cmd {
	mode, ok := m.sidebar.SelectedMode()
	if !ok {
		return nil
	}
	if m.session().Busy() && mode.ID != m.session().ActiveMode().ID {
		return m.ShowFlashWarning(waitForAnswerText)
	}
	if mode.ID != m.session().ActiveMode().ID {
		m.session().ChangeMode(mode.ID)
	}
	m.setFocus(FocusChat)
	return m.refresh()
}

// submit sends text as a consultation, or runs it as a slash command
func (m *Model) submit(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if res := m.handleSlashCommand(text); res.Handled {
		m.chat.ClearInput()
		m.session().SetDraft("")
		return tea.Batch(m.refresh(), res.Cmd)
	}

	return m.startConsultation(text)
}

// startConsultation registers text with the session and starts the
// network call off the event loop.
func (m *Model) startConsultation(text string) tea.Cmd {
	modeName := m.session().ActiveMode().Name

	req, err := m.controller.Begin(text)
	if err != nil {
		return m.ShowFlashWarning(consult.UserMessage(err))
	}
	m.chat.ClearInput()

	ctrl := m.controller
	timeout := m.config.RequestTimeout()
	complete := func() tea.Msg {
		ctx, cancel := consultContext(timeout)
		defer cancel()
		return AnswerMsg{Outcome: ctrl.Complete(ctx, req), ModeName: modeName}
	}

	return tea.Batch(m.refresh(), complete)
}

// RenderToString renders the current view as a string.
// This is useful for testing.
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	return m.render()
}
