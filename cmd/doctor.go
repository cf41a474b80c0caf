package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalia/legalia/internal/config"
	"github.com/legalia/legalia/internal/consult"
)

var skipConnectivity bool

const doctorTimeout = 15 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the API key and connectivity",
	Long: `Reports whether an API key is configured, where it came from, which
endpoint and model will be used, and whether the endpoint accepts the key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(modeFlag)
		if err != nil {
			return err
		}
		return doctor(cmd.Context(), rt, cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&skipConnectivity, "offline", false, "Skip the connectivity check")
	rootCmd.AddCommand(doctorCmd)
}

// doctor prints the diagnostic report. It returns an error when the setup
// cannot be used for consultations.
func doctor(ctx context.Context, rt *runtime, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	key, source := config.Credential()
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  config file:  %s\n", rt.config.Path())
	fmt.Fprintf(out, "  endpoint:     %s\n", rt.client.BaseURL())
	fmt.Fprintf(out, "  model:        %s\n", rt.config.GetModel())
	fmt.Fprintf(out, "  default mode: %s\n", rt.session.ActiveMode().ID)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "API key:")
	if key == "" {
		fmt.Fprintln(out, "  ✗ not found")
		fmt.Fprintf(out, "  %s\n", consult.ConfigWarning(key, config.CredentialEnvVars()))
		return fmt.Errorf("no API key configured")
	}
	fmt.Fprintf(out, "  ✓ found in %s\n", source)
	fmt.Fprintf(out, "  length:  %d\n", len(key))
	fmt.Fprintf(out, "  preview: %s\n", config.MaskCredential(key))

	if skipConnectivity {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Connectivity:")
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	n, err := rt.client.ListModels(ctx, key)
	if err != nil {
		fmt.Fprintf(out, "  ✗ %s\n", consult.UserMessage(err))
		return fmt.Errorf("connectivity check failed: %w", err)
	}
	fmt.Fprintf(out, "  ✓ endpoint reachable, %d model(s) available\n", n)
	return nil
}
