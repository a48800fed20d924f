// Command bpmlookup looks up BPM transactions by reference and reports the
// environment tier each one belongs to.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grez-lucas/bank-automation/internal/config"
	"github.com/grez-lucas/bank-automation/internal/logging"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank/bpm"
	"github.com/grez-lucas/bank-automation/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	// Global flags
	logLevel  string
	format    string
	noHistory bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bpmlookup",
	Short: "Look up BPM transactions and classify their environment",
	Long: `bpmlookup finds a transaction row in the BPM results grid and reports
its key columns and environment tier (buat, uat or unknown).

Rows come either from the live portal (lookup) or from a captured grid
snapshot (parse). Every lookup is recorded in a local sqlite history unless
--no-history is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger, err = logging.New(level)
		if err != nil {
			return err
		}

		if format != "json" && format != "yaml" {
			return fmt.Errorf("unsupported format %q (want json or yaml)", format)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record lookups in the history database")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// lookupRecord is one reference in command output.
type lookupRecord struct {
	Reference string             `json:"reference" yaml:"reference"`
	Fourth    string             `json:"fourth_column,omitempty" yaml:"fourth_column,omitempty"`
	Last      string             `json:"last_column,omitempty" yaml:"last_column,omitempty"`
	Result    *bpm.LookupResult  `json:"result,omitempty" yaml:"result,omitempty"`
	Summary   *bpm.ColumnSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func newRecord(reference string, result bpm.LookupResult, legacy, summary bool) lookupRecord {
	rec := lookupRecord{Reference: reference}
	if legacy {
		rec.Fourth, rec.Last = result.Legacy()
	} else {
		rec.Result = &result
	}
	if summary {
		s := result.Summary()
		rec.Summary = &s
	}
	return rec
}

func writeOutput(w io.Writer, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// lookupOptions configures a Lookup from the loaded config.
func lookupOptions(cache *bpm.Cache) []bpm.Option {
	return []bpm.Option{
		bpm.WithLogger(logger),
		bpm.WithCache(cache),
		bpm.WithPerformanceMode(cfg.PerformanceMode),
	}
}

// recordHistory stores results unless --no-history is set. History is best
// effort: failures are logged and the lookup output is still printed.
func recordHistory(ctx context.Context, source string, references []string, results []bpm.LookupResult) {
	if noHistory {
		return
	}

	db, err := store.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("history unavailable", zap.String("error_type", fmt.Sprintf("%T", err)))
		logger.Debug("history open failed", zap.Error(err))
		return
	}
	defer db.Close()

	for i, ref := range references {
		if _, err := db.RecordLookup(ctx, ref, source, results[i]); err != nil {
			logger.Warn("failed to record lookup",
				zap.String("reference", ref),
				zap.String("error_type", fmt.Sprintf("%T", err)))
		}
	}
}
