package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syntax-syndicate/chatshell/internal/config"
	"github.com/syntax-syndicate/chatshell/internal/console"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a chatshell configuration file",
	Long: `Create a chatshell configuration file through the settings form.

By default, writes the global config under the XDG config directory.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The settings form is generated from the Config struct, seeded with
	// the current effective values.
	model, err := config.FormSchema()
	if err != nil {
		return fmt.Errorf("failed to build settings schema: %w", err)
	}

	renderer := console.NewFormRenderer(os.Stdin, os.Stdout,
		console.WithDelimiter(cfg.ArrayDelimiter))
	values, ok, err := renderer.Run(model, cfg.Values())
	if err != nil {
		return fmt.Errorf("settings form failed: %w", err)
	}
	if !ok {
		fmt.Println("Setup cancelled.")
		return nil
	}
	cfg.ApplyValues(values)

	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'chatshell chat' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
