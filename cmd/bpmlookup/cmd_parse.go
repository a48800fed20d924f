package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grez-lucas/bank-automation/internal/scraper/bank/bpm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	parseLegacy  bool
	parseSummary bool
	parseMetrics bool
	parseWatch   bool
)

// parseCmd reads a captured grid snapshot.
var parseCmd = &cobra.Command{
	Use:   "parse <snapshot.html> [reference]...",
	Short: "Look up references in a captured results grid",
	Long: `Runs the lookup pipeline over an HTML snapshot of the results grid,
such as one written by scripts/capture-fixtures. Without references every
row in the grid is looked up.

With --watch the snapshot is parsed again after every save, which pairs
with scripts/capture-fixtures while the portal is being explored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseLegacy, "legacy", false, "Print only the 4th and last column")
	parseCmd.Flags().BoolVar(&parseSummary, "summary", false, "Include a column summary")
	parseCmd.Flags().BoolVar(&parseMetrics, "metrics", false, "Log pipeline timings when done")
	parseCmd.Flags().BoolVarP(&parseWatch, "watch", "w", false, "Parse again whenever the snapshot changes, until interrupted")
}

func runParse(cmd *cobra.Command, args []string) error {
	path, references := args[0], args[1:]
	cache := bpm.NewCache(cfg.NumericCacheMax, cfg.EnvCacheMax)

	if err := parseSnapshot(cmd, cache, path, references); err != nil {
		return err
	}
	if !parseWatch {
		return nil
	}

	return watchFile(cmd.Context(), logger, path, snapshotDebounce, func() {
		if err := parseSnapshot(cmd, cache, path, references); err != nil {
			logger.Warn("snapshot reparse failed", zap.String("error_type", fmt.Sprintf("%T", err)))
			logger.Debug("snapshot reparse failed", zap.Error(err))
		}
	})
}

// parseSnapshot looks up references in the snapshot at path, or every row
// when references is empty, and writes the records.
func parseSnapshot(cmd *cobra.Command, cache *bpm.Cache, path string, references []string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	locator, err := bpm.NewHTMLLocator(string(raw))
	if err != nil {
		return err
	}
	if len(references) == 0 {
		references = locator.Keys()
	}

	profiler := bpm.NewProfiler()
	lookup := bpm.NewLookup(locator, append(lookupOptions(cache), bpm.WithProfiler(profiler))...)

	ctx := cmd.Context()
	results, err := bpm.LookupMany(ctx, lookup, references, cfg.LookupConcurrency)
	if err != nil {
		return err
	}
	logger.Info("snapshot parsed",
		zap.String("file", filepath.Base(path)),
		zap.Int("references", len(references)))
	if parseMetrics {
		profiler.Log(logger)
	}

	records := make([]lookupRecord, len(results))
	for i, result := range results {
		records[i] = newRecord(references[i], result, parseLegacy, parseSummary)
	}

	recordHistory(ctx, filepath.Base(path), references, results)
	return writeOutput(cmd.OutOrStdout(), records)
}
