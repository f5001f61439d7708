package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a markdown tree and report corpus statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			flagRoot = args[0]
		}
		cfg, err := setup()
		if err != nil {
			return err
		}

		eng, _, src, _ := buildEngine(cfg, nil)

		fmt.Printf("Indexing %s...\n", cfg.Source.Root)
		start := time.Now()
		count, err := indexCorpus(cmd.Context(), eng, src)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		stats := eng.Statistics()
		fmt.Printf("\nDone in %s\n", elapsed.Round(time.Millisecond))
		fmt.Printf("  Documents: %d\n", count)
		fmt.Printf("  Terms:     %d\n", stats.TotalTerms)
		fmt.Printf("  Postings:  %d\n", stats.IndexSize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
