// Package consult wires a Session to the request builder and the completion
// client.
//
// A consultation runs in three steps so the network call can happen off the
// UI goroutine:
//
//	req, err := ctrl.Begin(text)      // validates, appends placeholder
//	out := ctrl.Complete(ctx, req)    // network only, no session access
//	ctrl.Finish(out)                  // resolves the placeholder
//
// Consult runs all three synchronously.
package consult

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/legalia/legalia/internal/errors"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/prompt"
	"github.com/legalia/legalia/internal/session"
)

// DocumentModeID is the mode attached documents switch to.
const DocumentModeID = "document"

// MaxAttachmentBytes caps the size of an attached document.
const MaxAttachmentBytes = 64 << 10

// Completer sends a payload and returns the assistant text.
type Completer interface {
	Send(ctx context.Context, payload prompt.Payload, credential string) (string, error)
}

// CredentialFunc returns the current API credential.
type CredentialFunc func() string

// Request is a consultation that has been accepted by the session.
type Request struct {
	ID      session.CorrelationID
	ModeID  string
	Payload prompt.Payload
	Started time.Time
}

// Outcome is the result of Complete.
type Outcome struct {
	ID       session.CorrelationID
	Text     string
	Err      error
	Duration time.Duration
}

// Controller runs consultations against one Session.
type Controller struct {
	session    *session.Session
	builder    prompt.Builder
	completer  Completer
	credential CredentialFunc
}

// New returns a Controller.
func New(sess *session.Session, builder prompt.Builder, completer Completer, credential CredentialFunc) *Controller {
	if credential == nil {
		credential = func() string { return "" }
	}
	return &Controller{
		session:    sess,
		builder:    builder,
		completer:  completer,
		credential: credential,
	}
}

// Session returns the session the controller drives.
func (c *Controller) Session() *session.Session {
	return c.session
}

// Begin validates text, appends the user message and pending placeholder,
// and builds the payload from the mode and transcript as they were before
// the submission. Validation failures leave the session unchanged.
func (c *Controller) Begin(text string) (*Request, error) {
	sub, err := c.session.Submit(text)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:      sub.ID,
		ModeID:  sub.Mode.ID,
		Payload: c.builder.Build(sub.Mode, sub.Transcript, strings.TrimSpace(text)),
		Started: time.Now(),
	}
	logger.WithRequest(string(sub.ID)).Info("consultation started",
		"mode", sub.Mode.ID,
		"turns", len(req.Payload.Messages))
	return req, nil
}

// Complete performs the network call for req. It does not touch the
// session and is safe to run on any goroutine.
func (c *Controller) Complete(ctx context.Context, req *Request) Outcome {
	out := Outcome{ID: req.ID}

	cred := c.credential()
	if strings.TrimSpace(cred) == "" {
		out.Err = errors.CredentialMissing()
		return out
	}

	out.Text, out.Err = c.completer.Send(ctx, req.Payload, cred)
	out.Duration = time.Since(req.Started)
	return out
}

// Finish resolves the placeholder of out with the answer or with a message
// describing the failure.
func (c *Controller) Finish(out Outcome) {
	log := logger.WithRequest(string(out.ID))
	if out.Err != nil {
		log.Warn("consultation failed", "kind", errors.GetKind(out.Err).String(), "error", out.Err)
		c.session.ResolveAssistantError(out.ID, UserMessage(out.Err))
		return
	}
	log.Info("consultation answered", "duration", out.Duration, "chars", len(out.Text))
	c.session.ResolveAssistantMessage(out.ID, out.Text)
}

// Consult runs a whole consultation synchronously and returns the answer.
// On failure the placeholder is resolved with the user-facing message and
// the classified error is returned.
func (c *Controller) Consult(ctx context.Context, text string) (string, error) {
	req, err := c.Begin(text)
	if err != nil {
		return "", err
	}
	out := c.Complete(ctx, req)
	c.Finish(out)
	if out.Err != nil {
		return "", out.Err
	}
	return out.Text, nil
}

// AttachDocument reads a text document, switches the session to document
// analysis and returns the document framed as a message body.
func (c *Controller) AttachDocument(path string) (string, error) {
	body, err := ReadDocument(path)
	if err != nil {
		return "", err
	}
	if c.session.ActiveMode().ID != DocumentModeID {
		c.session.ChangeMode(DocumentModeID)
	}
	return FrameDocument(filepath.Base(path), body), nil
}

// ReadDocument loads a UTF-8 text file up to MaxAttachmentBytes.
func ReadDocument(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.AttachmentFailed(path, err)
	}
	if info.IsDir() {
		return "", errors.AttachmentFailed(path, fmt.Errorf("is a directory"))
	}
	if info.Size() > MaxAttachmentBytes {
		return "", errors.AttachmentFailed(path, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), MaxAttachmentBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.AttachmentFailed(path, err)
	}
	if !utf8.Valid(data) {
		return "", errors.AttachmentFailed(path, fmt.Errorf("not a UTF-8 text file"))
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.AttachmentFailed(path, fmt.Errorf("file is empty"))
	}
	return text, nil
}

// FrameDocument wraps a document body so the model can tell it apart from
// the user's question.
func FrameDocument(name, body string) string {
	return fmt.Sprintf("Documento adjunto: %s\n\n---\n%s\n---", name, body)
}

// UserMessage renders err as the text shown in place of an answer. It never
// includes wire data.
func UserMessage(err error) string {
	switch errors.GetKind(err) {
	case errors.KindConfig:
		return "The API key is not configured. Set OPENROUTER_API_KEY (or add it to .env) and restart."
	case errors.KindAuthentication:
		return "The API key is invalid or has expired. Check your credential and try again."
	case errors.KindPermission:
		return "Access to the model was denied or the quota is exhausted. Check your account's plan and credits."
	case errors.KindRateLimit:
		return "Too many requests. Please wait a moment before sending another question."
	case errors.KindUpstream:
		if status := errors.GetStatus(err); status > 0 {
			return fmt.Sprintf("The assistant service returned an error (HTTP %d). Please try again later.", status)
		}
		return "The assistant service returned an error. Please try again later."
	case errors.KindNetwork:
		return "Could not reach the assistant service. Check your internet connection and try again."
	case errors.KindMalformedResponse:
		return "The assistant service sent a response that could not be read. Please try again."
	case errors.KindValidation:
		msg := errors.Message(err)
		if msg == "" {
			return "The message could not be sent."
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	case errors.KindIO:
		return "The attached file could not be read. Only UTF-8 text files are supported."
	default:
		return "Something went wrong while processing your query. Please try again."
	}
}

// ConfigWarning returns the startup warning for a missing credential, or ""
// when one is configured.
func ConfigWarning(credential string, envVars []string) string {
	if strings.TrimSpace(credential) != "" {
		return ""
	}
	return fmt.Sprintf("No API key configured. Set %s in your environment or .env file; questions cannot be answered until then.",
		strings.Join(envVars, " or "))
}
