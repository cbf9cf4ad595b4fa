package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syntax-syndicate/chatshell/internal/config"
	"github.com/syntax-syndicate/chatshell/internal/shell"
)

var chatFlags struct {
	session   string
	workspace string
	project   string
	dataDir   string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open a chat session",
	Long: `Open a chat session in the TUI.

Transcript history replays from the embedded event store, so reopening a
session by name continues where it left off.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatFlags.session, "session", "n", "main", "Session name")
	chatCmd.Flags().StringVarP(&chatFlags.workspace, "workspace", "w", "", "Workspace (default from config)")
	chatCmd.Flags().StringVarP(&chatFlags.project, "project", "p", "", "Project within the workspace")
	chatCmd.Flags().StringVar(&chatFlags.dataDir, "data-dir", "", "Data directory override")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if chatFlags.dataDir != "" {
		cfg.DataDir = chatFlags.dataDir
	}

	sh, err := shell.New(cfg, shell.Options{
		SessionName: chatFlags.session,
		Workspace:   chatFlags.workspace,
		Project:     chatFlags.project,
	})
	if err != nil {
		return fmt.Errorf("failed to create shell: %w", err)
	}

	if err := sh.Start(); err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}
	defer func() {
		if err := sh.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	// Graceful shutdown on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		if err := sh.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
		os.Exit(0)
	}()

	if err := sh.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
