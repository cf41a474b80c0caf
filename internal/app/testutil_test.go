package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/legalia/legalia/internal/config"
	"github.com/legalia/legalia/internal/consult"
	"github.com/legalia/legalia/internal/keys"
	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/prompt"
	"github.com/legalia/legalia/internal/session"
	"github.com/legalia/legalia/internal/ui"
)

// fakeCompleter answers every consultation with a canned reply.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	payloads []prompt.Payload
}

func (f *fakeCompleter) Send(_ context.Context, p prompt.Payload, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// testEnv bundles a model with its collaborators.
type testEnv struct {
	m        *Model
	fake     *fakeCompleter
	cfg      *config.Config
	copied   []string
	notified []string
}

// newTestEnv creates a sized model backed by a fake completer and a config
// file in a temp dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Cleanup(func() { ui.SetTheme(ui.DefaultTheme) })

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	env := &testEnv{
		fake: &fakeCompleter{reply: "Respuesta de prueba"},
		cfg:  cfg,
	}
	sess := session.New(modes.Builtin())
	ctrl := consult.New(sess, prompt.NewBuilder(cfg.GetModel()), env.fake, func() string { return "sk-test" })

	env.m = New(cfg, ctrl, "0.0.0-test")
	env.m.copyText = func(s string) error {
		env.copied = append(env.copied, s)
		return nil
	}
	env.m.notify = func(modeName string, answered bool) error {
		state := "answered"
		if !answered {
			state = "failed"
		}
		env.notified = append(env.notified, modeName+":"+state)
		return nil
	}
	setSize(env.m, 120, 40)
	return env
}

// keyPress creates a tea.KeyPressMsg for the given key string.
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.ShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.CtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case keys.CtrlL:
		return tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl}
	case keys.CtrlT:
		return tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}
	case keys.CtrlY:
		return tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl}
	default:
		// Regular character - set both Code and Text
		r := []rune(key)
		if len(r) == 1 {
			return tea.KeyPressMsg{Code: r[0], Text: key}
		}
		return tea.KeyPressMsg{Text: key}
	}
}

// sendKey sends a key press to the model and returns the command.
func sendKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyPress(key))
	return cmd
}

// typeText simulates typing a string character by character.
func typeText(m *Model, text string) {
	for _, ch := range text {
		sendKey(m, string(ch))
	}
}

// setSize sends a window size message to the model.
func setSize(m *Model, width, height int) {
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
}

// runCmd executes cmd and any batched commands, returning every message.
// Tick commands block for their interval.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// findAnswer runs cmd and returns the AnswerMsg it produced.
func findAnswer(t *testing.T, cmd tea.Cmd) AnswerMsg {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if answer, ok := msg.(AnswerMsg); ok {
			return answer
		}
	}
	t.Fatal("command did not produce an AnswerMsg")
	return AnswerMsg{}
}

// ask types text, submits it and delivers the answer.
func (env *testEnv) ask(t *testing.T, text string) {
	t.Helper()
	typeText(env.m, text)
	answer := findAnswer(t, sendKey(env.m, keys.Enter))
	env.m.Update(answer)
}
