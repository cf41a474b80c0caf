package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legalia/legalia/internal/errors"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/modes"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// CorrelationID links a pending assistant placeholder to its resolution.
type CorrelationID string

// Message is one entry of the conversation.
type Message struct {
	Role          Role
	Text          string
	CreatedAt     time.Time
	Pending       bool
	Failed        bool
	CorrelationID CorrelationID
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	ActiveMode modes.Mode
	Messages   []Message
	Draft      string
	Busy       bool
}

// PendingMessage returns the in-flight placeholder, if any.
func (s Snapshot) PendingMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Pending {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// LastAnswer returns the text of the most recent resolved assistant message.
func (s Snapshot) LastAnswer() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == RoleAssistant && !m.Pending && !m.Failed {
			return m.Text, true
		}
	}
	return "", false
}

// Listener is called after every mutation.
type Listener func(Snapshot)

// Session is the state of one consultation session. It is safe for
// concurrent use.
type Session struct {
	mu        sync.RWMutex
	registry  *modes.Registry
	mode      modes.Mode
	messages  []Message
	draft     string
	busy      bool
	listeners map[int]Listener
	nextSub   int

	now   func() time.Time
	newID func() CorrelationID
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides how correlation ids are generated.
func WithIDGenerator(gen func() CorrelationID) Option {
	return func(s *Session) { s.newID = gen }
}

// WithInitialMode starts the session in the given mode instead of the
// registry default. Unknown ids fall back to the default.
func WithInitialMode(id string) Option {
	return func(s *Session) {
		if m, err := s.registry.Get(id); err == nil {
			s.mode = m
		}
	}
}

// New creates a session in the registry's default mode with no messages.
func New(registry *modes.Registry, opts ...Option) *Session {
	s := &Session{
		registry:  registry,
		mode:      registry.Default(),
		listeners: make(map[int]Listener),
		now:       time.Now,
		newID:     func() CorrelationID { return CorrelationID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the mode registry the session was created with.
func (s *Session) Registry() *modes.Registry {
	return s.registry
}

// ActiveMode returns the current mode.
func (s *Session) ActiveMode() modes.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Busy reports whether a consultation is in flight.
func (s *Session) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ActiveMode: s.mode,
		Messages:   msgs,
		Draft:      s.draft,
		Busy:       s.busy,
	}
}

// Transcript returns the messages that may be sent as conversational
// context: user and assistant turns that are resolved and not failed.
func (s *Session) Transcript() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcriptLocked()
}

func (s *Session) transcriptLocked() []Message {
	out := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Role == RoleSystem || m.Pending || m.Failed {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Subscribe registers fn to be called after every mutation and returns a
// function that removes it.
func (s *Session) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// notify must be called without holding the lock.
func (s *Session) notify() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// ChangeMode switches the active mode and records the change as a system
// message. Unknown ids are ignored and false is returned.
func (s *Session) ChangeMode(id string) bool {
	m, err := s.registry.Get(id)
	if err != nil {
		logger.WithComponent("session").Debug("ignoring unknown mode", "mode", id)
		return false
	}

	s.mu.Lock()
	s.mode = m
	s.messages = append(s.messages, Message{
		Role:      RoleSystem,
		Text:      "Mode changed to: " + m.Label(),
		CreatedAt: s.now(),
	})
	s.mu.Unlock()

	logger.WithComponent("session").Info("mode changed", "mode", m.ID)
	s.notify()
	return true
}

// AddNotice appends a system message. Notices are shown to the user but
// never sent to the model. Blank text is ignored.
func (s *Session) AddNotice(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, Message{
		Role:      RoleSystem,
		Text:      text,
		CreatedAt: s.now(),
	})
	s.mu.Unlock()

	s.notify()
}

// SetDraft stores the unsent input text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	changed := s.draft != text
	s.draft = text
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Draft returns the unsent input text.
func (s *Session) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Submission is what a successful Submit captured under one lock: the
// placeholder id, the mode the placeholder was created for, and the
// transcript as it was before the new user message.
type Submission struct {
	ID         CorrelationID
	Mode       modes.Mode
	Transcript []Message
}

// SubmitUserMessage appends the user's message and a pending assistant
// placeholder, marks the session busy and returns the placeholder's id.
// The stored text is trimmed of surrounding whitespace. Empty input or a
// submission while busy fails with a validation error and leaves the
// session untouched.
func (s *Session) SubmitUserMessage(text string) (CorrelationID, error) {
	sub, err := s.Submit(text)
	return sub.ID, err
}

// Submit is SubmitUserMessage that also returns the mode and transcript the
// request must be built from, read atomically with the submission.
func (s *Session) Submit(text string) (Submission, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Submission{}, errors.EmptyInput()
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Submission{}, errors.RequestInFlight()
	}

	sub := Submission{
		ID:         s.newID(),
		Mode:       s.mode,
		Transcript: s.transcriptLocked(),
	}
	now := s.now()
	s.messages = append(s.messages,
		Message{Role: RoleUser, Text: trimmed, CreatedAt: now},
		Message{Role: RoleAssistant, Text: s.mode.Caption(), CreatedAt: now, Pending: true, CorrelationID: sub.ID},
	)
	s.busy = true
	s.draft = ""
	s.mu.Unlock()

	s.notify()
	return sub, nil
}

// ResolveAssistantMessage replaces the pending placeholder with the given
// id by the answer text. An unknown id is a no-op. Busy is always cleared.
func (s *Session) ResolveAssistantMessage(id CorrelationID, text string) {
	s.resolve(id, text, false)
}

// ResolveAssistantError is ResolveAssistantMessage for a failed
// consultation; the message is kept out of future transcripts.
func (s *Session) ResolveAssistantError(id CorrelationID, text string) {
	s.resolve(id, text, true)
}

func (s *Session) resolve(id CorrelationID, text string, failed bool) {
	s.mu.Lock()
	found := false
	for i := range s.messages {
		m := &s.messages[i]
		if m.Pending && m.CorrelationID == id {
			m.Text = text
			m.Pending = false
			m.Failed = failed
			found = true
			break
		}
	}
	s.busy = false
	s.mu.Unlock()

	if !found {
		logger.WithComponent("session").Debug("stale resolution ignored", "correlationID", string(id))
	}
	s.notify()
}

// Clear removes all messages. The active mode and busy flag are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()

	s.notify()
}
