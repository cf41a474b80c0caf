// Package prompt builds chat-completion payloads for a consultation.
package prompt

import (
	"strings"

	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/session"
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "anthropic/claude-3.5-sonnet"
	// DefaultTemperature is the sampling temperature for every request.
	DefaultTemperature = 0.7
)

// Wire roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fixed blocks appended to every system prompt.
const (
	specialtyBlock = `Áreas de especialidad:
- Derecho civil, familia y sucesiones
- Derecho laboral y seguridad social
- Derecho comercial y corporativo
- Derecho administrativo y contratación estatal
- Derecho penal y procedimiento
- Derecho tributario
Cita la normativa colombiana vigente y la jurisprudencia relevante cuando aplique.`

	conciseDirective = "Responde en máximo 200 palabras, de forma directa y concisa."

	disclaimerDirective = "Recuerda al usuario que esta respuesta es orientativa y no reemplaza la asesoría de un abogado titulado."
)

// ChatMessage is one entry of the wire messages array.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the request body sent to the completion endpoint.
type Payload struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Builder assembles payloads. The zero value uses DefaultModel and
// DefaultTemperature.
type Builder struct {
	Model       string
	Temperature float64
}

// NewBuilder returns a Builder for the given model. An empty model means
// DefaultModel.
func NewBuilder(model string) Builder {
	if model == "" {
		model = DefaultModel
	}
	return Builder{Model: model, Temperature: DefaultTemperature}
}

// SystemContent returns the full system message for a mode.
func SystemContent(mode modes.Mode) string {
	parts := []string{strings.TrimSpace(mode.SystemPrompt), specialtyBlock}
	if mode.ResponseFocus != "" {
		parts = append(parts, "Enfoque de la respuesta: "+mode.ResponseFocus)
	}
	if mode.IsConcise() {
		parts = append(parts, conciseDirective)
	}
	parts = append(parts, disclaimerDirective)
	return strings.Join(parts, "\n\n")
}

// Build returns the payload for sending newUserText in mode after the given
// transcript. System messages, pending placeholders and failed answers in
// the transcript are skipped. Build has no hidden inputs.
func (b Builder) Build(mode modes.Mode, transcript []session.Message, newUserText string) Payload {
	model := b.Model
	if model == "" {
		model = DefaultModel
	}
	temp := b.Temperature
	if temp == 0 {
		temp = DefaultTemperature
	}

	msgs := make([]ChatMessage, 0, len(transcript)+2)
	msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: SystemContent(mode)})
	for _, m := range transcript {
		if m.Pending || m.Failed {
			continue
		}
		switch m.Role {
		case session.RoleUser:
			msgs = append(msgs, ChatMessage{Role: RoleUser, Content: m.Text})
		case session.RoleAssistant:
			msgs = append(msgs, ChatMessage{Role: RoleAssistant, Content: m.Text})
		}
	}
	msgs = append(msgs, ChatMessage{Role: RoleUser, Content: newUserText})

	return Payload{
		Model:       model,
		Messages:    msgs,
		Temperature: temp,
		MaxTokens:   mode.MaxResponseTokens(),
	}
}
