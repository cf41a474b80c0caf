// Package modes holds the fixed set of consultation modes.
//
// A Mode selects the system prompt, input placeholder and response-length
// policy for one category of legal consultation. The set is loaded once
// from an embedded YAML document and never changes afterwards.
package modes

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/legalia/legalia/internal/errors"
)

// DefaultID is the id of the mode every session starts in.
const DefaultID = "general"

// Token ceilings sent as max_tokens. Concise modes get the smaller budget.
const (
	StandardMaxTokens = 1000
	ConciseMaxTokens  = 300
)

// LengthPolicy controls how long responses may be.
type LengthPolicy string

const (
	LengthStandard LengthPolicy = "standard"
	LengthConcise  LengthPolicy = "concise"
)

// Mode is an immutable consultation configuration.
type Mode struct {
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	Icon           string       `yaml:"icon"`
	SystemPrompt   string       `yaml:"system_prompt"`
	Placeholder    string       `yaml:"placeholder"`
	LengthPolicy   LengthPolicy `yaml:"length_policy"`
	ResponseFocus  string       `yaml:"response_focus"`
	LoadingCaption string       `yaml:"loading_caption"`
	Default        bool         `yaml:"default"`
}

// IsConcise reports whether the mode asks for short answers.
func (m Mode) IsConcise() bool {
	return m.LengthPolicy == LengthConcise
}

// MaxResponseTokens is the token ceiling for a single answer.
func (m Mode) MaxResponseTokens() int {
	if m.IsConcise() {
		return ConciseMaxTokens
	}
	return StandardMaxTokens
}

// Caption returns the text shown while an answer is pending.
func (m Mode) Caption() string {
	if m.LoadingCaption != "" {
		return m.LoadingCaption
	}
	if m.IsConcise() {
		return "Generating quick response…"
	}
	return "Analyzing your query…"
}

// Label is the name followed by the icon, as shown in mode-change notices.
func (m Mode) Label() string {
	if m.Icon == "" {
		return m.Name
	}
	return m.Name + " " + m.Icon
}

// Registry is a read-only, ordered set of modes.
type Registry struct {
	modes []Mode
	byID  map[string]int
	def   int
}

type document struct {
	Modes []Mode `yaml:"modes"`
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.E(errors.Op("modes.Parse"), errors.KindConfig, "invalid registry document", err)
	}
	if len(doc.Modes) == 0 {
		return nil, errors.ModesInvalid("registry has no modes")
	}

	r := &Registry{
		modes: make([]Mode, 0, len(doc.Modes)),
		byID:  make(map[string]int, len(doc.Modes)),
		def:   -1,
	}
	for _, m := range doc.Modes {
		m.ID = strings.TrimSpace(m.ID)
		m.SystemPrompt = strings.TrimSpace(m.SystemPrompt)
		if m.ID == "" {
			return nil, errors.ModesInvalid("mode with empty id")
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, errors.ModesInvalid(fmt.Sprintf("duplicate mode id %q", m.ID))
		}
		switch m.LengthPolicy {
		case "":
			m.LengthPolicy = LengthStandard
		case LengthStandard, LengthConcise:
		default:
			return nil, errors.ModesInvalid(fmt.Sprintf("mode %q has unknown length policy %q", m.ID, m.LengthPolicy))
		}
		if m.Default {
			if r.def >= 0 {
				return nil, errors.ModesInvalid("more than one default mode")
			}
			r.def = len(r.modes)
		}
		r.byID[m.ID] = len(r.modes)
		r.modes = append(r.modes, m)
	}

	if r.def < 0 {
		return nil, errors.ModesInvalid("no default mode")
	}
	if r.modes[r.def].ID != DefaultID {
		return nil, errors.ModesInvalid(fmt.Sprintf("default mode must be %q, got %q", DefaultID, r.modes[r.def].ID))
	}
	return r, nil
}

// Get returns the mode with the given id.
func (r *Registry) Get(id string) (Mode, error) {
	i, ok := r.byID[id]
	if !ok {
		return Mode{}, errors.ModeNotFound(id)
	}
	return r.modes[i], nil
}

// Has reports whether id names a mode.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Default returns the default mode.
func (r *Registry) Default() Mode {
	return r.modes[r.def]
}

// All returns the modes in declaration order.
func (r *Registry) All() []Mode {
	out := make([]Mode, len(r.modes))
	copy(out, r.modes)
	return out
}

// IDs returns the mode ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.modes))
	for i, m := range r.modes {
		ids[i] = m.ID
	}
	return ids
}

// Len returns the number of modes.
func (r *Registry) Len() int {
	return len(r.modes)
}

// IndexOf returns the position of id in declaration order, or -1.
func (r *Registry) IndexOf(id string) int {
	if i, ok := r.byID[id]; ok {
		return i
	}
	return -1
}

//go:embed modes.yaml
var builtin []byte

var (
	builtinOnce sync.Once
	builtinReg  *Registry
)

// Builtin returns the registry compiled into the binary.
// It panics if the embedded document is invalid, which is a build defect.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r, err := Parse(builtin)
		if err != nil {
			panic(fmt.Sprintf("modes: embedded registry is invalid: %v", err))
		}
		builtinReg = r
	})
	return builtinReg
}
