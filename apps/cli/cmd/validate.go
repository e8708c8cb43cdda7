package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
	"github.com/abdul-hamid-achik/fauxhttp/packages/fixtures"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|directory...]",
	Short: "Validate fixture files",
	Long: `Check fixture files against the fixture schema and make sure every
route can be registered, without serving anything.

Examples:
  fauxhttp validate api.yaml
  fauxhttp validate ./fixtures/`,
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	files, err := fixtureArgs(args, cfg)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	logger := newLogger(cmd, cfg)
	hasErrors := false
	for _, file := range files {
		f, err := fixtures.Load(file)
		if err == nil {
			// Registering catches bad URL patterns the schema cannot see.
			err = f.Apply(adapter.New(adapter.WithLogger(logger)))
		}
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "%s %s: %v\n", red("Error"), file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d routes)\n", green("Valid:"), file, len(f.Routes))
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	return nil
}
