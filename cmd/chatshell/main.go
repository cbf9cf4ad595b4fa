package main

import (
	"context"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/syntax-syndicate/chatshell/internal/logger"
)

const (
	logoText1 = "█▀▀ █ █ ▄▀█ ▀█▀ █▀ █ █ █▀▀ █   █  "
	logoText2 = "█▄▄ █▀█ █▀█  █  ▄█ █▀█ ██▄ █▄▄ █▄▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Optional .env for CHATSHELL_* overrides; ignored when absent.
	_ = godotenv.Load()

	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chatshell",
	Short: "Terminal chat shell with schema-driven forms and trigger completion",
}

// renderLogo colors the logo lines with the brand accents.
func renderLogo() string {
	line1 := lipgloss.NewStyle().Foreground(lipgloss.Color("#cba6f7")).Render(logoText1)
	line2 := lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Render(logoText2)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

chatshell is a terminal chat application. Messages persist through embedded
NATS JetStream event sourcing, structured input happens through forms
generated from JSON schemas, and the input line completes commands, context
references, and entities behind trigger characters (/ @ : #).

An MCP sidecar exposes the transcript and context index to agent tooling.`

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(setupCmd)
}
