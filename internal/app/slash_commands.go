package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/legalia/legalia/internal/consult"
	"github.com/legalia/legalia/internal/logger"
)

// SlashCommandResult represents the result of handling a slash command.
type SlashCommandResult struct {
	Handled bool    // Whether the input was treated as a command
	Cmd     tea.Cmd // Follow-up command, e.g. a flash or a consultation
}

// slashCommandDef defines a slash command with its help text.
type slashCommandDef struct {
	name        string
	usage       string
	description string
}

// getSlashCommands returns the registry of available slash commands.
// Using a function instead of a var avoids initialization cycles.
func getSlashCommands() []slashCommandDef {
	return []slashCommandDef{
		{
			name:        "mode",
			usage:       "mode [id]",
			description: "List modes, or switch to the given mode",
		},
		{
			name:        "attach",
			usage:       "attach <file> [question]",
			description: "Send a text document for analysis",
		},
		{
			name:        "clear",
			usage:       "clear",
			description: "Clear the conversation",
		},
		{
			name:        "help",
			usage:       "help",
			description: "Show shortcuts and commands",
		},
	}
}

// handleSlashCommand checks if the input is a slash command and handles it.
func (m *Model) handleSlashCommand(input string) SlashCommandResult {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return SlashCommandResult{Handled: false}
	}

	// Parse command and arguments
	parts := strings.SplitN(strings.TrimPrefix(input, "/"), " ", 2)
	cmdName := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	logger.WithComponent("app").Debug("slash command detected", "command", cmdName, "args", args)

	switch cmdName {
	case "mode", "modo":
		return handleModeCommand(m, args)
	case "attach", "adjuntar":
		return handleAttachCommand(m, args)
	case "clear", "limpiar":
		return handleClearCommand(m, args)
	case "help", "ayuda":
		return handleHelpCommand(m, args)
	default:
		return SlashCommandResult{
			Handled: true,
			Cmd:     m.ShowFlashWarning(fmt.Sprintf("Unknown command /%s. Type /help for the list.", cmdName)),
		}
	}
}

// handleModeCommand lists the modes or switches to one.
func handleModeCommand(m *Model, args string) SlashCommandResult {
	sess := m.session()
	if args == "" {
		var sb strings.Builder
		sb.WriteString("Available modes:")
		for _, mode := range sess.Registry().All() {
			marker := " "
			if mode.ID == sess.ActiveMode().ID {
				marker = "●"
			}
			fmt.Fprintf(&sb, "\n%s %s (%s)", marker, mode.Label(), mode.ID)
		}
		sess.AddNotice(sb.String())
		return SlashCommandResult{Handled: true}
	}

	if sess.Busy() {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning(waitForAnswerText)}
	}

	id := strings.ToLower(args)
	if id == sess.ActiveMode().ID {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashInfo("Already in " + sess.ActiveMode().Name)}
	}
	if !sess.ChangeMode(id) {
		return SlashCommandResult{
			Handled: true,
			Cmd:     m.ShowFlashError(fmt.Sprintf("Unknown mode %q. Valid: %s", args, strings.Join(sess.Registry().IDs(), ", "))),
		}
	}
	return SlashCommandResult{Handled: true}
}

// handleAttachCommand reads a document, switches to document analysis and
// sends it with the optional question.
func handleAttachCommand(m *Model, args string) SlashCommandResult {
	if args == "" {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning("Usage: /attach <file> [question]")}
	}
	if m.session().Busy() {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning(waitForAnswerText)}
	}

	path, question, _ := strings.Cut(args, " ")
	body, err := m.controller.AttachDocument(path)
	if err != nil {
		logger.WithComponent("app").Warn("attach failed", "path", path, "error", err)
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashError(consult.UserMessage(err))}
	}

	if question = strings.TrimSpace(question); question != "" {
		body = question + "\n\n" + body
	}
	return SlashCommandResult{Handled: true, Cmd: m.startConsultation(body)}
}

// handleClearCommand clears the conversation.
func handleClearCommand(m *Model, _ string) SlashCommandResult {
	if m.session().Busy() {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning(waitForAnswerText)}
	}
	m.session().Clear()
	return SlashCommandResult{Handled: true}
}

// handleHelpCommand shows shortcuts and commands as a notice.
func handleHelpCommand(m *Model, _ string) SlashCommandResult {
	m.session().AddNotice(helpText())
	return SlashCommandResult{Handled: true}
}
