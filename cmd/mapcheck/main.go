// mapcheck validates NL-assistant mapping documents: the flat records a
// spreadsheet or designer UI produces are classified, cross-checked and
// reported on, either once from the command line, continuously from a
// file watcher, or on demand over a stdio RPC tool interface.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mapcheck/internal/config"
	"mapcheck/internal/logging"
)

const version = "0.1.0"

var (
	// Global flags
	cfgPath string
	verbose bool
	csvPath string
	srcDB   string

	cfg    *config.Config
	logger *zap.Logger
)

// Exit codes: 1 means the mapping is invalid, 2 means validation could
// not run at all. Scripts branch on the difference.
var (
	errInvalidMapping  = errors.New("mapping is invalid")
	errProcessingError = errors.New("validation could not run")
)

var rootCmd = &cobra.Command{
	Use:   "mapcheck",
	Short: "Validate NL-to-SQL mapping documents",
	Long: `mapcheck checks mapping documents for structural problems before an
assistant generates SQL from them: undefined aliases in joins, filters
and expressions, missing or duplicated targets, and load strategies
that need primary keys nobody defined.

Records are read from a CSV export or a SQLite source. Reports go to
stdout as styled text or JSON; logs stay on stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if csvPath != "" {
			cfg.Source.CSVPath = csvPath
			cfg.Source.DatabasePath = ""
		}
		if srcDB != "" {
			cfg.Source.DatabasePath = srcDB
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "mapcheck.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "mapping CSV file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&srcDB, "source-db", "", "mapping SQLite source (overrides config)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mapcheck version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mapcheck %s\n", version)
	},
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, errInvalidMapping):
			os.Exit(1)
		case errors.Is(err, errProcessingError):
			os.Exit(2)
		default:
			fmt.Fprintf(os.Stderr, "mapcheck: %v\n", err)
			os.Exit(2)
		}
	}
}
