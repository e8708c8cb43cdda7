package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/fauxhttp/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new fauxhttp project",
	Long: `Initialize a new fauxhttp project in the current directory.

This creates:
  - .fauxhttp.json           - Configuration file
  - fixtures/example.yaml    - Example fixture file

Examples:
  fauxhttp init
  fauxhttp init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleFixture = `baseUrl: https://api.example.com
headers:
  X-Served-By: fauxhttp
routes:
  - name: health
    url: /health
    body: ok

  - name: list users
    url: /users
    query:
      page: "1"
    json:
      - id: 1
        name: Ada
      - id: 2
        name: Grace

  - name: users by tag
    url: /users
    query:
      tag: [admin, staff]
    json: []

  - name: create user
    url: /users
    method: POST
    status: 201
    headers:
      Location: /users/3
    json:
      id: 3
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".fauxhttp.json")
	fixtureDir := filepath.Join(cwd, "fixtures")
	exampleFile := filepath.Join(fixtureDir, "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Fixtures = []string{"fixtures"}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.MkdirAll(fixtureDir, 0755); err != nil {
		return fmt.Errorf("failed to create fixtures directory: %w", err)
	}
	if err := os.WriteFile(exampleFile, []byte(exampleFixture), 0644); err != nil {
		return fmt.Errorf("failed to create example fixture: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintln(cmd.OutOrStdout(), "\nTry it:")
	fmt.Fprintln(cmd.OutOrStdout(), "  fauxhttp list")
	fmt.Fprintln(cmd.OutOrStdout(), "  fauxhttp serve --base-url https://api.example.com")
	return nil
}
