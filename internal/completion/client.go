// Package completion talks to an OpenAI-compatible chat-completion endpoint.
//
// Send performs exactly one HTTP request per call and never retries. Every
// failure is returned as a classified *errors.Error so callers can render a
// message that matches what went wrong.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legalia/legalia/internal/errors"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/prompt"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultTimeout bounds a single request at the transport level.
	DefaultTimeout = 60 * time.Second

	// maxErrorBody caps how much of a failure body is read for logging.
	maxErrorBody = 4 << 10
	// maxSuccessBody caps a success body.
	maxSuccessBody = 4 << 20

	appReferer = "https://github.com/legalia/legalia"
	appTitle   = "Legal IA"
)

const (
	opSend       errors.Op = "completion.Send"
	opListModels errors.Op = "completion.ListModels"
)

// Client sends chat-completion requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for a self-hosted gateway.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the transport-level timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New returns a Client for DefaultBaseURL.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Send posts payload and returns the first choice's text.
func (c *Client) Send(ctx context.Context, payload prompt.Payload, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", errors.CredentialMissing()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.E(opSend, errors.KindValidation, "failed to encode payload", err)
	}

	log := logger.WithComponent("completion")
	start := time.Now()

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(body), credential)
	if err != nil {
		return "", errors.TransportFailure(opSend, err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("sending completion", "model", payload.Model, "messages", len(payload.Messages), "maxTokens", payload.MaxTokens)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("completion transport failure", "error", err)
		return "", errors.TransportFailure(opSend, err)
	}
	defer resp.Body.Close()

	if err := classify(opSend, resp); err != nil {
		log.Warn("completion rejected", "status", resp.StatusCode, "duration", time.Since(start))
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSuccessBody))
	if err != nil {
		return "", errors.TransportFailure(opSend, err)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", errors.E(opSend, errors.KindMalformedResponse, "response is not valid JSON", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.MalformedResponse(opSend, "response has no choices")
	}
	// An empty string is a valid answer; only a missing field is malformed.
	if cr.Choices[0].Message.Content == nil {
		return "", errors.MalformedResponse(opSend, "first choice has no content")
	}
	content := *cr.Choices[0].Message.Content

	log.Info("completion received", "status", resp.StatusCode, "chars", len(content), "duration", time.Since(start))
	return content, nil
}

// ListModels returns how many models the endpoint exposes. It is used as a
// connectivity and credential check.
func (c *Client) ListModels(ctx context.Context, credential string) (int, error) {
	if strings.TrimSpace(credential) == "" {
		return 0, errors.CredentialMissing()
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/models", nil, credential)
	if err != nil {
		return 0, errors.TransportFailure(opListModels, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.TransportFailure(opListModels, err)
	}
	defer resp.Body.Close()

	if err := classify(opListModels, resp); err != nil {
		return 0, err
	}

	var mr modelsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSuccessBody)).Decode(&mr); err != nil {
		return 0, errors.E(opListModels, errors.KindMalformedResponse, "response is not valid JSON", err)
	}
	return len(mr.Data), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, credential string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("HTTP-Referer", appReferer)
	req.Header.Set("X-Title", appTitle)
	return req, nil
}

// classify returns nil for 2xx responses. For anything else it drains a
// bounded part of the body for the log and maps the status to an error kind.
func classify(op errors.Op, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// A failed body read must not hide the status.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	logger.WithComponent("completion").Debug("error body",
		"status", resp.StatusCode,
		"body", strings.TrimSpace(string(snippet)))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return errors.Unauthorized(op)
	case http.StatusForbidden:
		return errors.Forbidden(op)
	case http.StatusTooManyRequests:
		return errors.RateLimited(op)
	default:
		return errors.UpstreamFailure(op, resp.StatusCode, statusText(resp))
	}
}

func statusText(resp *http.Response) string {
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	// resp.Status looks like "599 Custom Reason".
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
}
