package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/fauxhttp/packages/fixtures"
)

var listCmd = &cobra.Command{
	Use:   "list [file|directory...]",
	Short: "List the routes in fixture files",
	Long: `List every route defined in fixture files along with its status.

Examples:
  fauxhttp list api.yaml
  fauxhttp list ./fixtures/`,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	files, err := fixtureArgs(args, cfg)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()

	for _, file := range files {
		f, err := fixtures.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, route := range f.Routes {
			status := route.Status
			if status == 0 {
				status = 200
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s %s\n", route.Label(), cyan(status))
			if len(route.Query) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    query: %v\n", route.Query)
			}
		}
	}

	return nil
}
