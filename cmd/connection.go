package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/openstates/openstates"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to Open States",
	Long: `Check that an API key is configured and perform one legislators request
for the configured region.`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if client.Key() == "" {
		return fmt.Errorf("connection test failed: %w", openstates.ErrMissingAPIKey)
	}

	fmt.Fprintf(out, "Testing connection to Open States at %s...\n", cfg.OpenStates.BaseURL)

	legislators, err := client.ListLegislators(cmd.Context(), cfg.OpenStates.Region, nil)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	fmt.Fprintf(out, "- Region: %s\n", cfg.OpenStates.Region)
	fmt.Fprintf(out, "- Legislators: %d\n", legislators.Len())
	if status := client.Status(); status != nil {
		fmt.Fprintf(out, "- Status: %s\n", status.String())
	} else {
		fmt.Fprintln(out, "- Status: not reported")
	}

	if presets := filters.ListFilters(); len(presets) > 0 {
		fmt.Fprintf(out, "\nFilter presets:\n")
		for _, name := range presets {
			f, _ := filters.GetFilter(name)
			fmt.Fprintf(out, "  • %s: %s\n", name, f.Expression())
		}
	}

	return nil
}
