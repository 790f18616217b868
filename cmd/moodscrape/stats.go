package main

import (
	"os"

	"github.com/pevans/moodscrape/output"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Summarize an output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		articles, err := output.Read(args[0])
		if err != nil {
			return err
		}
		renderStats(os.Stdout, args[0], summarize(articles))
		return nil
	},
}
