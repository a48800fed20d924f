package main

import (
	"fmt"

	"github.com/grez-lucas/bank-automation/internal/scraper/bank/bpm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	lookupTypes   []string
	lookupLegacy  bool
	lookupSummary bool
)

// lookupCmd searches the live portal.
var lookupCmd = &cobra.Command{
	Use:   "lookup <reference>...",
	Short: "Search the live BPM portal for one or more references",
	Long: `Opens the portal at BPM_URL, ticks the requested transaction types in
the market tree and searches each reference in turn.

Example:
  bpmlookup lookup --type CBPR-MX --type EnterpriseISO TXN123 TXN456`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringSliceVarP(&lookupTypes, "type", "t", nil, "Transaction type to select (enum name or display value)")
	lookupCmd.Flags().BoolVar(&lookupLegacy, "legacy", false, "Print only the 4th and last column")
	lookupCmd.Flags().BoolVar(&lookupSummary, "summary", false, "Include a column summary")
}

func runLookup(cmd *cobra.Command, args []string) error {
	if err := cfg.Require("BPM_URL", cfg.PortalURL); err != nil {
		return err
	}

	var types []bpm.TransactionType
	for _, s := range lookupTypes {
		mapped := bpm.MapTransactionType(s)
		if len(mapped) == 0 {
			return fmt.Errorf("unknown transaction type %q", s)
		}
		types = append(types, mapped...)
	}

	scraper, err := bpm.NewScraper(logger,
		bpm.WithHeadless(cfg.Headless),
		bpm.WithTimeout(cfg.Timeout()),
		bpm.WithChromeBin(cfg.ChromeBin),
		bpm.WithHumanTyping(cfg.HumanTyping),
	)
	if err != nil {
		return err
	}
	defer scraper.Close()

	ctx := cmd.Context()
	if _, err := scraper.Open(ctx, cfg.PortalURL); err != nil {
		return err
	}
	if len(types) > 0 {
		if err := scraper.SelectMarkets(ctx, types); err != nil {
			return err
		}
	}

	cache := bpm.NewCache(cfg.NumericCacheMax, cfg.EnvCacheMax)
	results := make([]bpm.LookupResult, 0, len(args))
	records := make([]lookupRecord, 0, len(args))
	for _, ref := range args {
		result, err := scraper.Lookup(ctx, ref, lookupOptions(cache)...)
		if err != nil {
			return err
		}
		logger.Info("lookup finished",
			zap.String("reference", ref),
			zap.Bool("found", result.Found),
			zap.String("environment", string(result.Environment)))

		results = append(results, result)
		records = append(records, newRecord(ref, result, lookupLegacy, lookupSummary))
	}

	recordHistory(ctx, "portal", args, results)
	return writeOutput(cmd.OutOrStdout(), records)
}
