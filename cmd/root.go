package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/openstates/config"
	"github.com/s0up4200/openstates/filter"
	"github.com/s0up4200/openstates/openstates"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *openstates.Client
	filters  *filter.Manager
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "openstates",
	Short: "Query the Open States legislative API",
	Long: `openstates is a CLI for the Open States API. It lists and fetches bills,
legislators and committees of US state legislatures, and can narrow the
results with filter expressions and JSONPath queries.

The API key is read from OPEN_STATES_KEY, a .env file or the config file.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (trace, debug, info, warn, error)")
}

// initializeApp initializes the configuration, logger, client and filters
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger = setupLogger(cfg.Logging)

	client = openstates.NewClient(cfg.OpenStates.APIKey, logger,
		openstates.WithBaseURL(cfg.OpenStates.BaseURL),
		openstates.WithTimeout(cfg.OpenStates.Timeout),
		openstates.WithStatusCheck(cfg.OpenStates.StatusCheck),
		openstates.WithUserAgent("openstates-cli/"+version),
	)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("base_url", cfg.OpenStates.BaseURL).
		Bool("api_key_set", cfg.OpenStates.APIKey != "").
		Strs("presets", filters.ListFilters()).
		Msg("Initialized")

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if filters == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return filters.Close(ctx)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
