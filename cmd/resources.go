package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/openstates/collection"
	"github.com/s0up4200/openstates/openstates"
)

// Query flags shared by the resource commands
var (
	paramFlags   []string
	filterExpr   string
	preset       string
	jsonPath     string
	outputFormat string
	concurrency  int
)

type listFunc func(ctx context.Context, region string, params openstates.Params) (*collection.Collection, error)

type batchFunc func(ctx context.Context, ids []string, params openstates.Params, concurrency int) ([]*collection.Collection, error)

var billsCmd = &cobra.Command{
	Use:   "bills [region]",
	Short: "Search bills",
	Long: `Search bills. The region argument is accepted but the API does not scope
bill searches by it; pass --param state=tx to do so.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args, client.ListBills)
	},
}

var billCmd = &cobra.Command{
	Use:   "bill <id>...",
	Short: "Fetch bills by Open States id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd, args, client.GetBills)
	},
}

var legislatorsCmd = &cobra.Command{
	Use:   "legislators [region]",
	Short: "List legislators of a state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args, client.ListLegislators)
	},
}

var committeesCmd = &cobra.Command{
	Use:   "committees [region]",
	Short: "Search committees of a state",
	Long: `Search committees of a state. Unless --param q=... is given, the search is
for "` + openstates.CommitteeSearchQuery + `".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args, client.ListCommittees)
	},
}

var committeeCmd = &cobra.Command{
	Use:   "committee <id>...",
	Short: "Fetch committees by Open States id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd, args, client.GetCommittees)
	},
}

func init() {
	for _, c := range []*cobra.Command{billsCmd, billCmd, legislatorsCmd, committeesCmd, committeeCmd} {
		c.Flags().StringArrayVar(&paramFlags, "param", nil, "query parameter as key=value (repeatable)")
		c.Flags().StringVarP(&jsonPath, "query", "q", "", "JSONPath applied to the result, e.g. '$[*].full_name'")
		c.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (console, json)")
		rootCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{billsCmd, legislatorsCmd, committeesCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to each record")
		c.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	}

	for _, c := range []*cobra.Command{billCmd, committeeCmd} {
		c.Flags().IntVarP(&concurrency, "concurrency", "c", openstates.DefaultConcurrency, "number of ids fetched in parallel")
	}
}

func runList(cmd *cobra.Command, args []string, list listFunc) error {
	params, err := parseParams(paramFlags)
	if err != nil {
		return err
	}

	region := cfg.OpenStates.Region
	if len(args) > 0 {
		region = args[0]
	}

	ctx := cmd.Context()
	data, err := list(ctx, region, params)
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}

	data, err = applyFilter(ctx, data)
	if err != nil {
		return err
	}

	return render(cmd, data)
}

func runGet(cmd *cobra.Command, ids []string, fetch batchFunc) error {
	params, err := parseParams(paramFlags)
	if err != nil {
		return err
	}

	results, err := fetch(cmd.Context(), ids, params, concurrency)
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}

	if len(results) == 1 {
		return render(cmd, results[0])
	}
	return render(cmd, collection.NewArray(results...))
}

// applyFilter narrows data by --filter, or else by --preset
func applyFilter(ctx context.Context, data *collection.Collection) (*collection.Collection, error) {
	switch {
	case filterExpr != "":
		logger.Debug().Str("filter", filterExpr).Msg("Filtering records")
		out, err := filters.SelectExpression(ctx, filterExpr, data)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return out, nil
	case preset != "":
		logger.Debug().Str("preset", preset).Msg("Filtering records")
		out, err := filters.SelectNamed(ctx, preset, data)
		if err != nil {
			return nil, fmt.Errorf("preset '%s': %w", preset, err)
		}
		return out, nil
	}
	return data, nil
}

// render applies --query and prints data in the selected format
func render(cmd *cobra.Command, data *collection.Collection) error {
	if jsonPath != "" {
		results, err := data.Query(jsonPath)
		if err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
		data = collection.NewArray(results...)
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.Format
	}

	return writeOutput(cmd.OutOrStdout(), data, format)
}

// parseParams turns key=value pairs into request parameters
func parseParams(pairs []string) (openstates.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(openstates.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
