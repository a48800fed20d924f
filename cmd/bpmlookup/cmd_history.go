package main

import (
	"github.com/grez-lucas/bank-automation/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyReference string
	historyLimit     int
	historyCounts    bool
)

// historyCmd lists recorded lookups.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded lookups, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyReference, "reference", "r", "", "Only show lookups of this reference")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries (0 for all)")
	historyCmd.Flags().BoolVar(&historyCounts, "counts", false, "Show lookup counts per environment instead")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyCounts {
		counts, err := db.EnvironmentCounts(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), counts)
	}

	lookups, err := db.ListLookups(cmd.Context(), historyReference, historyLimit)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), lookups)
}
