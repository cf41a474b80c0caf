package cmd

import (
	"fmt"

	"github.com/legalia/legalia/internal/completion"
	"github.com/legalia/legalia/internal/config"
	"github.com/legalia/legalia/internal/consult"
	"github.com/legalia/legalia/internal/errors"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/prompt"
	"github.com/legalia/legalia/internal/session"
)

// dotEnvPath is the .env file read from the working directory
const dotEnvPath = ".env"

// runtime is everything a command needs to run consultations.
type runtime struct {
	config     *config.Config
	registry   *modes.Registry
	session    *session.Session
	client     *completion.Client
	controller *consult.Controller

	credentialSource string // env var the key came from, "" when missing
	warning          string // startup warning, "" when configured
}

// newRuntime loads .env and the config file and wires a session to the
// completion client. modeID overrides the configured default mode.
func newRuntime(modeID string) (*runtime, error) {
	log := logger.WithComponent("cmd")

	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		log.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return newRuntimeFrom(cfg, modeID)
}

// newRuntimeFrom wires a runtime around an already loaded config.
func newRuntimeFrom(cfg *config.Config, modeID string) (*runtime, error) {
	log := logger.WithComponent("cmd")
	registry := modes.Builtin()

	initial := cfg.GetDefaultMode()
	if modeID != "" {
		if !registry.Has(modeID) {
			return nil, fmt.Errorf("%w (valid modes: %v)", errors.ModeNotFound(modeID), registry.IDs())
		}
		initial = modeID
	}
	if !registry.Has(initial) {
		log.Warn("configured default mode not found, using default", "mode", initial)
		initial = registry.Default().ID
	}

	sess := session.New(registry, session.WithInitialMode(initial))
	client := completion.New(
		completion.WithBaseURL(cfg.GetAPIBaseURL()),
		completion.WithTimeout(cfg.RequestTimeout()),
	)

	key, source := config.Credential()
	ctrl := consult.New(sess, prompt.NewBuilder(cfg.GetModel()), client, func() string {
		k, _ := config.Credential()
		return k
	})

	log.Info("runtime ready",
		"mode", initial,
		"model", cfg.GetModel(),
		"credential", config.MaskCredential(key),
		"credentialSource", source)

	return &runtime{
		config:           cfg,
		registry:         registry,
		session:          sess,
		client:           client,
		controller:       ctrl,
		credentialSource: source,
		warning:          consult.ConfigWarning(key, config.CredentialEnvVars()),
	}, nil
}
