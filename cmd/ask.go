package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/legalia/legalia/internal/consult"
	"github.com/legalia/legalia/internal/logger"
	"github.com/legalia/legalia/internal/session"
)

var askFile string

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a single question and print the answer",
	Long: `Runs one consultation without the TUI and prints the assistant's answer.

Use --mode to pick the consultation mode and --file to attach a UTF-8 text
document, which switches to document analysis.`,
	Example: `  legalia ask "¿Cuánto dura el periodo de prueba?"
  legalia ask --mode labor "¿Cómo se liquidan las vacaciones?"
  legalia ask --file contrato.txt "¿Hay cláusulas abusivas?"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Attach a text document for analysis")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && askFile == "" {
		return fmt.Errorf("a question or --file is required")
	}

	if err := logger.Init(logger.HeadlessLogPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logger.Close()

	rt, err := newRuntime(modeFlag)
	if err != nil {
		return err
	}
	return ask(cmd.Context(), rt, question, askFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// ask runs one consultation and writes the answer to out. Progress and
// warnings go to errOut.
func ask(ctx context.Context, rt *runtime, question, file string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.warning != "" {
		fmt.Fprintf(errOut, "Warning: %s\n", rt.warning)
	}

	text := question
	if file != "" {
		body, err := rt.controller.AttachDocument(file)
		if err != nil {
			logger.WithComponent("ask").Warn("attach failed", "path", file, "error", err)
			return fmt.Errorf("%s", consult.UserMessage(err))
		}
		if question != "" {
			text = question + "\n\n" + body
		} else {
			text = body
		}
	}

	// Show the mode's caption once the placeholder appears.
	var once sync.Once
	cancel := rt.session.Subscribe(func(snap session.Snapshot) {
		if pending, ok := snap.PendingMessage(); ok {
			once.Do(func() {
				fmt.Fprintf(errOut, "%s %s\n", snap.ActiveMode.Icon, pending.Text)
			})
		}
	})
	defer cancel()

	answer, err := rt.controller.Consult(ctx, text)
	if err != nil {
		return fmt.Errorf("%s", consult.UserMessage(err))
	}

	fmt.Fprintln(out, answer)
	return nil
}
