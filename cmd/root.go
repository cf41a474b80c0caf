package cmd

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/legalia/legalia/internal/app"
	"github.com/legalia/legalia/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	modeFlag              string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "legalia",
	Short: "Legal IA, a terminal assistant for legal consultations",
	Long: `Legal IA is a terminal assistant for legal consultations.
Pick a consultation mode (general, quick, document analysis, contracts,
labor, corporate or civil law), ask your question and read the answer.

Answers come from an OpenAI-compatible completion API. Set
OPENROUTER_API_KEY in your environment or in a .env file.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Consultation mode to start in (see 'legalia modes')")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	// Set version dynamically
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("legalia %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("legalia %s\n", version)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := logger.Init(logger.DefaultLogPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	// Ensure logger is closed on exit
	defer logger.Close()

	rt, err := newRuntime(modeFlag)
	if err != nil {
		return err
	}

	// Create and run the app
	m := app.New(rt.config, rt.controller, version)
	m.SetStartupWarning(rt.warning)
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
