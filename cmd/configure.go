package cmd

import (
	"fmt"
	"strings"

	huh "charm.land/huh/v2"
	"github.com/spf13/cobra"

	"github.com/legalia/legalia/internal/config"
	"github.com/legalia/legalia/internal/errors"
	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/ui"
)

// ModelCharLimit bounds the model id input
const ModelCharLimit = 120

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Edit preferences interactively",
	Long: `Opens a form to choose the completion model, the default consultation
mode, the color theme and desktop notifications. Answers are saved to
~/.legalia/config.json.

The API key is never stored there; keep it in OPENROUTER_API_KEY or a .env file.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

// configureAnswers holds the form values.
type configureAnswers struct {
	Model         string
	DefaultMode   string
	Theme         string
	Notifications bool
}

func answersFrom(cfg *config.Config) configureAnswers {
	return configureAnswers{
		Model:         cfg.GetModel(),
		DefaultMode:   cfg.GetDefaultMode(),
		Theme:         cfg.GetTheme(),
		Notifications: cfg.GetNotificationsEnabled(),
	}
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	ui.SetThemeByName(cfg.GetTheme())

	reg := modes.Builtin()
	a := answersFrom(cfg)
	if err := configureForm(reg, &a).Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return err
	}

	if err := applyConfigure(cfg, reg, a); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", cfg.Path())
	return nil
}

func configureForm(reg *modes.Registry, a *configureAnswers) *huh.Form {
	modeOptions := make([]huh.Option[string], 0, reg.Len())
	for _, m := range reg.All() {
		modeOptions = append(modeOptions, huh.NewOption(m.Label(), m.ID))
	}

	themes := ui.ThemeNames()
	themeOptions := make([]huh.Option[string], len(themes))
	for i, t := range themes {
		themeOptions[i] = huh.NewOption(strings.ToUpper(string(t[:1]))+string(t[1:]), string(t))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Completion model id sent to the API").
				Placeholder(config.DefaultModel).
				CharLimit(ModelCharLimit).
				Value(&a.Model),
			huh.NewSelect[string]().
				Title("Default mode").
				Options(modeOptions...).
				Value(&a.DefaultMode),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions...).
				Value(&a.Theme),
			huh.NewConfirm().
				Title("Desktop notifications").
				Description("Notify when an answer arrives").
				Value(&a.Notifications),
		),
	).WithTheme(ui.FormTheme())
}

// applyConfigure validates the answers, stores them in cfg and saves it.
func applyConfigure(cfg *config.Config, reg *modes.Registry, a configureAnswers) error {
	if !reg.Has(a.DefaultMode) {
		return errors.ModeNotFound(a.DefaultMode)
	}
	switch a.Theme {
	case config.ThemeDark, config.ThemeLight:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown theme %q", a.Theme))
	}

	model := strings.TrimSpace(a.Model)
	if model == "" {
		model = config.DefaultModel
	}

	cfg.SetModel(model)
	cfg.SetDefaultMode(a.DefaultMode)
	cfg.SetTheme(a.Theme)
	cfg.SetNotificationsEnabled(a.Notifications)
	return cfg.Save()
}
