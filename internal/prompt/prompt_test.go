package prompt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/session"
)

func mustMode(t *testing.T, id string) modes.Mode {
	t.Helper()
	m, err := modes.Builtin().Get(id)
	if err != nil {
		t.Fatalf("Get(%q): %v", id, err)
	}
	return m
}

func TestBuild_GeneralEmptyTranscript(t *testing.T) {
	general := mustMode(t, "general")
	p := NewBuilder("").Build(general, nil, "hello")

	if len(p.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(p.Messages))
	}
	if p.Messages[0].Role != RoleSystem {
		t.Errorf("first role = %q, want system", p.Messages[0].Role)
	}
	if !strings.HasPrefix(p.Messages[0].Content, general.SystemPrompt) {
		t.Error("system content should start with the mode prompt")
	}
	if !strings.Contains(p.Messages[0].Content, disclaimerDirective) {
		t.Error("system content should contain the disclaimer")
	}
	if strings.Contains(p.Messages[0].Content, conciseDirective) {
		t.Error("general mode should not carry the concise directive")
	}
	if p.Messages[1] != (ChatMessage{Role: RoleUser, Content: "hello"}) {
		t.Errorf("second message = %+v", p.Messages[1])
	}
	if p.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d, want 1000", p.MaxTokens)
	}
	if p.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", p.Temperature)
	}
	if p.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", p.Model, DefaultModel)
	}
}

func TestBuild_QuickMode(t *testing.T) {
	p := NewBuilder("").Build(mustMode(t, "quick"), nil, "hello")

	if p.MaxTokens != 300 {
		t.Errorf("MaxTokens = %d, want 300", p.MaxTokens)
	}
	if !strings.Contains(p.Messages[0].Content, conciseDirective) {
		t.Error("quick mode should carry the concise directive")
	}
	if !strings.Contains(p.Messages[0].Content, disclaimerDirective) {
		t.Error("disclaimer should always be present")
	}
}

func TestBuild_ResponseFocus(t *testing.T) {
	m := mustMode(t, "labor")
	content := SystemContent(m)
	if !strings.Contains(content, m.ResponseFocus) {
		t.Error("response focus should be part of the system content")
	}

	m.ResponseFocus = ""
	if strings.Contains(SystemContent(m), "Enfoque de la respuesta") {
		t.Error("empty focus should add no focus line")
	}
}

func TestBuild_TranscriptFiltering(t *testing.T) {
	now := time.Now()
	transcript := []session.Message{
		{Role: session.RoleUser, Text: "q1", CreatedAt: now},
		{Role: session.RoleAssistant, Text: "a1", CreatedAt: now},
		{Role: session.RoleSystem, Text: "Mode changed to: X", CreatedAt: now},
		{Role: session.RoleUser, Text: "q2", CreatedAt: now},
		{Role: session.RoleAssistant, Text: "error text", CreatedAt: now, Failed: true},
		{Role: session.RoleAssistant, Text: "Analyzing…", CreatedAt: now, Pending: true, CorrelationID: "c"},
	}

	p := NewBuilder("openai/gpt-4o").Build(mustMode(t, "civil"), transcript, "q3")

	want := []ChatMessage{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleUser, Content: "q2"},
		{Role: RoleUser, Content: "q3"},
	}
	got := p.Messages[1:]
	if len(got) != len(want) {
		t.Fatalf("got %d turns, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if p.Model != "openai/gpt-4o" {
		t.Errorf("Model = %q", p.Model)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder("")
	m := mustMode(t, "contract")
	transcript := []session.Message{
		{Role: session.RoleUser, Text: "q1", CreatedAt: time.Unix(1, 0)},
		{Role: session.RoleAssistant, Text: "a1", CreatedAt: time.Unix(2, 0)},
	}

	first, err := json.Marshal(b.Build(m, transcript, "q2"))
	if err != nil {
		t.Fatal(err)
	}
	// Timestamps are not part of the wire body.
	transcript[0].CreatedAt = time.Unix(99, 0)
	second, err := json.Marshal(b.Build(m, transcript, "q2"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("payloads differ:\n%s\n%s", first, second)
	}
}

func TestPayload_WireShape(t *testing.T) {
	p := Builder{}.Build(mustMode(t, "general"), nil, "hola")
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"model", "messages", "temperature", "max_tokens"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("wire body missing %q: %s", key, raw)
		}
	}
	if len(decoded) != 4 {
		t.Errorf("wire body has extra fields: %s", raw)
	}
}
