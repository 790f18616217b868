package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pevans/moodscrape/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyDSN   string
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "List recorded runs, or show one run and its failures",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("history") {
			cfg.History.DSN = historyDSN
		}
		if cfg.History.DSN == "" {
			return errors.New("run history is not configured (set history.dsn or --history)")
		}

		store, err := history.NewStore(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer store.Close()

		if len(args) == 1 {
			return showRun(store, args[0])
		}

		runs, err := store.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		renderRuns(os.Stdout, runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyDSN, "history", "", "Run history database path")
}

func showRun(store *history.Store, id string) error {
	runID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", id, err)
	}

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	failures, err := store.ListFailures(runID)
	if err != nil {
		return err
	}

	renderRunDetail(os.Stdout, run, failures)
	return nil
}
