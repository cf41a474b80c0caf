package consult

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalia/legalia/internal/completion"
	"github.com/legalia/legalia/internal/errors"
	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/prompt"
	"github.com/legalia/legalia/internal/session"
)

// fakeCompleter records payloads and returns canned results.
type fakeCompleter struct {
	mu       sync.Mutex
	payloads []prompt.Payload
	creds    []string
	reply    string
	err      error
}

func (f *fakeCompleter) Send(_ context.Context, p prompt.Payload, cred string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	f.creds = append(f.creds, cred)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func newController(f Completer, cred string) (*Controller, *session.Session) {
	sess := session.New(modes.Builtin())
	return New(sess, prompt.NewBuilder(""), f, func() string { return cred }), sess
}

func TestConsult_Success(t *testing.T) {
	fake := &fakeCompleter{reply: "Según el artículo 64 del CST..."}
	ctrl, sess := newController(fake, "sk-test")

	answer, err := ctrl.Consult(context.Background(), "  ¿Cómo se calcula la indemnización?  ")
	require.NoError(t, err)
	assert.Equal(t, "Según el artículo 64 del CST...", answer)

	snap := sess.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "¿Cómo se calcula la indemnización?", snap.Messages[0].Text)
	assert.Equal(t, answer, snap.Messages[1].Text)
	assert.False(t, snap.Messages[1].Pending)
	assert.False(t, snap.Busy)

	require.Equal(t, 1, fake.calls())
	assert.Equal(t, "sk-test", fake.creds[0])
	p := fake.payloads[0]
	require.Len(t, p.Messages, 2)
	assert.Equal(t, "system", p.Messages[0].Role)
	assert.Equal(t, prompt.ChatMessage{Role: "user", Content: "¿Cómo se calcula la indemnización?"}, p.Messages[1])
	assert.Equal(t, 1000, p.MaxTokens)
}

func TestConsult_TranscriptExcludesCurrentPlaceholder(t *testing.T) {
	fake := &fakeCompleter{reply: "a1"}
	ctrl, sess := newController(fake, "sk-test")

	_, err := ctrl.Consult(context.Background(), "q1")
	require.NoError(t, err)
	sess.ChangeMode("quick")
	fake.reply = "a2"
	_, err = ctrl.Consult(context.Background(), "q2")
	require.NoError(t, err)

	p := fake.payloads[1]
	var turns []string
	for _, m := range p.Messages[1:] {
		turns = append(turns, m.Role+":"+m.Content)
	}
	assert.Equal(t, []string{"user:q1", "assistant:a1", "user:q2"}, turns)
	assert.Equal(t, 300, p.MaxTokens)
}

func TestConsult_MissingCredential(t *testing.T) {
	fake := &fakeCompleter{reply: "never"}
	ctrl, sess := newController(fake, "")

	_, err := ctrl.Consult(context.Background(), "hola")
	assert.True(t, errors.Is(err, errors.KindConfig), "err = %v", err)
	assert.Equal(t, 0, fake.calls(), "no request without a credential")

	snap := sess.Snapshot()
	require.Len(t, snap.Messages, 2)
	last := snap.Messages[1]
	assert.True(t, last.Failed)
	assert.Contains(t, last.Text, "not configured")
	assert.False(t, snap.Busy)
}

func TestConsult_ValidationNoNetwork(t *testing.T) {
	fake := &fakeCompleter{reply: "x"}
	ctrl, sess := newController(fake, "sk-test")

	_, err := ctrl.Consult(context.Background(), "   ")
	assert.True(t, errors.Is(err, errors.KindValidation))
	assert.Equal(t, 0, fake.calls())
	assert.Empty(t, sess.Snapshot().Messages)
}

func TestBegin_PayloadMatchesPlaceholderMode(t *testing.T) {
	ctrl, sess := newController(&fakeCompleter{reply: "ok"}, "sk-test")
	ids := sess.Registry().IDs()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				sess.ChangeMode(ids[i%len(ids)])
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 100; i++ {
		req, err := ctrl.Begin("pregunta")
		require.NoError(t, err)

		mode, err := sess.Registry().Get(req.ModeID)
		require.NoError(t, err)
		assert.Equal(t, mode.MaxResponseTokens(), req.Payload.MaxTokens)
		assert.Contains(t, req.Payload.Messages[0].Content, strings.TrimSpace(mode.SystemPrompt))

		var caption string
		for _, m := range sess.Snapshot().Messages {
			if m.CorrelationID == req.ID {
				caption = m.Text
			}
		}
		require.Equal(t, mode.Caption(), caption, "placeholder and payload must use the same mode")
		ctrl.Finish(Outcome{ID: req.ID, Text: "ok"})
	}
}

func TestBegin_BusyRejected(t *testing.T) {
	fake := &fakeCompleter{reply: "x"}
	ctrl, sess := newController(fake, "sk-test")

	req, err := ctrl.Begin("first")
	require.NoError(t, err)

	_, err = ctrl.Begin("second")
	assert.True(t, errors.Is(err, errors.KindValidation))
	assert.Len(t, sess.Snapshot().Messages, 2)

	ctrl.Finish(ctrl.Complete(context.Background(), req))
	assert.False(t, sess.Busy())
}

func TestFinish_AfterClearIsNoop(t *testing.T) {
	fake := &fakeCompleter{reply: "late answer"}
	ctrl, sess := newController(fake, "sk-test")

	req, err := ctrl.Begin("q")
	require.NoError(t, err)
	sess.Clear()

	ctrl.Finish(ctrl.Complete(context.Background(), req))
	assert.Empty(t, sess.Snapshot().Messages)
	assert.False(t, sess.Busy())
}

func TestConsult_ClassifiedErrorsOverHTTP(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind errors.Kind
		wantText string
	}{
		{"unauthorized", http.StatusUnauthorized, errors.KindAuthentication, "invalid or has expired"},
		{"forbidden", http.StatusForbidden, errors.KindPermission, "quota"},
		{"rate limited", http.StatusTooManyRequests, errors.KindRateLimit, "wait"},
		{"server error", http.StatusInternalServerError, errors.KindUpstream, "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"secret upstream detail"}}`)
			}))
			defer srv.Close()

			client := completion.New(completion.WithBaseURL(srv.URL))
			ctrl, sess := newController(client, "sk-test")

			_, err := ctrl.Consult(context.Background(), "hola")
			assert.Equal(t, tt.wantKind, errors.GetKind(err))

			msgs := sess.Snapshot().Messages
			require.Len(t, msgs, 2)
			assert.Equal(t, session.RoleAssistant, msgs[1].Role)
			assert.True(t, msgs[1].Failed)
			assert.Contains(t, msgs[1].Text, tt.wantText)
			assert.NotContains(t, msgs[1].Text, "secret upstream detail")
			assert.False(t, sess.Busy())
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", errors.CredentialMissing(), "not configured"},
		{"auth", errors.Unauthorized("op"), "invalid"},
		{"permission", errors.Forbidden("op"), "denied"},
		{"rate", errors.RateLimited("op"), "wait"},
		{"upstream", errors.UpstreamFailure("op", 502, "Bad Gateway"), "HTTP 502"},
		{"network", errors.TransportFailure("op", io.ErrUnexpectedEOF), "internet connection"},
		{"malformed", errors.MalformedResponse("op", "no choices"), "could not be read"},
		{"empty", errors.EmptyInput(), "Message is empty."},
		{"busy", errors.RequestInFlight(), "A consultation is already in progress."},
		{"io", errors.AttachmentFailed("x", io.EOF), "attached file"},
		{"unknown", io.EOF, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, UserMessage(tt.err), tt.want)
		})
	}
}

func TestConfigWarning(t *testing.T) {
	vars := []string{"OPENROUTER_API_KEY", "LEGALIA_API_KEY"}
	assert.Empty(t, ConfigWarning("sk-x", vars))

	w := ConfigWarning("  ", vars)
	assert.Contains(t, w, "OPENROUTER_API_KEY or LEGALIA_API_KEY")
}

func TestAttachDocument(t *testing.T) {
	ctrl, sess := newController(&fakeCompleter{}, "sk-test")
	path := filepath.Join(t.TempDir(), "arrendamiento.txt")
	require.NoError(t, os.WriteFile(path, []byte("\nCLÁUSULA PRIMERA. Objeto...\n"), 0644))

	body, err := ctrl.AttachDocument(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "Documento adjunto: arrendamiento.txt"))
	assert.Contains(t, body, "CLÁUSULA PRIMERA. Objeto...")

	snap := sess.Snapshot()
	assert.Equal(t, DocumentModeID, snap.ActiveMode.ID)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, session.RoleSystem, snap.Messages[0].Role)

	// Already in document mode: no second notice.
	_, err = ctrl.AttachDocument(path)
	require.NoError(t, err)
	assert.Len(t, sess.Snapshot().Messages, 1)
}

func TestAttachDocument_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	binary := filepath.Join(dir, "scan.pdf")
	large := filepath.Join(dir, "large.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0644))
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00, 0x81}, 0644))
	require.NoError(t, os.WriteFile(large, []byte(strings.Repeat("a", MaxAttachmentBytes+1)), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.txt")},
		{"directory", dir},
		{"empty", empty},
		{"binary", binary},
		{"too large", large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, sess := newController(&fakeCompleter{}, "sk-test")
			_, err := ctrl.AttachDocument(tt.path)
			assert.True(t, errors.Is(err, errors.KindIO), "err = %v", err)
			assert.Equal(t, modes.DefaultID, sess.ActiveMode().ID, "failed attach should not switch mode")
		})
	}
}
