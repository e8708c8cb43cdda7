package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/fauxhttp/packages/registry"
)

var (
	matchMethodFlag string
	matchURLFlag    string
	matchPathFlag   string
)

var matchCmd = &cobra.Command{
	Use:   "match [file|directory...] --url URL",
	Short: "Show which route answers a request",
	Long: `Load fixture files and show the response a request would receive,
without starting a server. Use --path to extract a value from a JSON
response with a gjson path.

Examples:
  fauxhttp match api.yaml --url "https://api.example.com/users?page=1"
  fauxhttp match api.yaml --method POST --url https://api.example.com/users
  fauxhttp match api.yaml --url https://api.example.com/users/1 --path name`,
	RunE: matchCommand,
}

func init() {
	matchCmd.Flags().StringVarP(&matchMethodFlag, "method", "X", "GET", "Request method")
	matchCmd.Flags().StringVarP(&matchURLFlag, "url", "u", "", "Request URL")
	matchCmd.Flags().StringVar(&matchPathFlag, "path", "", "gjson path to extract from a JSON response body")
	_ = matchCmd.MarkFlagRequired("url")
}

func matchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	files, err := fixtureArgs(args, cfg)
	if err != nil {
		return err
	}

	a, _, err := buildAdapter(files, cfg, newLogger(cmd, cfg))
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}

	resp, err := a.Lookup(matchMethodFlag, matchURLFlag)
	if err != nil {
		if registry.IsUnregistered(err) {
			fmt.Fprintln(cmd.OutOrStderr(), err)
			return fmt.Errorf("no route matched")
		}
		return err
	}

	out := cmd.OutOrStdout()
	if matchPathFlag != "" {
		if !resp.IsJSON() {
			return fmt.Errorf("response is %q, --path needs a JSON body", resp.ContentType())
		}
		result := resp.JSON(matchPathFlag)
		if !result.Exists() {
			return fmt.Errorf("path %q not found in response", matchPathFlag)
		}
		fmt.Fprintln(out, result.String())
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %d %s\n", green("Matched:"), resp.StatusCode, resp.Reason)
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(out, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintf(out, "\n%s\n", resp.String())
	return nil
}
