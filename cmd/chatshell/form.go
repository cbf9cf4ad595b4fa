package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syntax-syndicate/chatshell/internal/config"
	"github.com/syntax-syndicate/chatshell/internal/console"
	"github.com/syntax-syndicate/chatshell/internal/schema"
)

var formFlags struct {
	seed string
	out  string
}

var formCmd = &cobra.Command{
	Use:   "form <schema.json>",
	Short: "Fill a schema-driven form on a plain terminal",
	Long: `Fill a form generated from a JSON schema, one field per prompt.

Type "<" on its own line to go back a field. Enter on an empty line accepts
the shown draft. The collected values print as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runForm,
}

func init() {
	formCmd.Flags().StringVar(&formFlags.seed, "seed", "", "JSON object with initial values")
	formCmd.Flags().StringVarP(&formFlags.out, "out", "o", "", "Write the result to a file instead of stdout")
}

func runForm(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	model, err := schema.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	var seed map[string]any
	if formFlags.seed != "" {
		if err := json.Unmarshal([]byte(formFlags.seed), &seed); err != nil {
			return fmt.Errorf("invalid seed JSON: %w", err)
		}
	}

	renderer := console.NewFormRenderer(os.Stdin, os.Stdout,
		console.WithDelimiter(cfg.ArrayDelimiter))
	values, ok, err := renderer.Run(model, seed)
	if err != nil {
		return fmt.Errorf("form failed: %w", err)
	}
	if !ok {
		// Cancelled is an outcome, not an error.
		return nil
	}

	output, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	if formFlags.out != "" {
		return os.WriteFile(formFlags.out, append(output, '\n'), 0644)
	}
	fmt.Println(string(output))
	return nil
}
