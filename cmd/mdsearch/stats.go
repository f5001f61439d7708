package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var flagStatsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Index a markdown tree and print corpus statistics",
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
		start := time.Now()
		count, err := indexCorpus(cmd.Context(), eng, src)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		stats := eng.Statistics()
		if flagStatsJSON {
			out := struct {
				Documents    int     `json:"documents"`
				Terms        int     `json:"terms"`
				Postings     int     `json:"postings"`
				IndexTimeMs  float64 `json:"index_time_ms"`
				AvgDocLength float64 `json:"avg_postings_per_document"`
			}{
				Documents:   count,
				Terms:       stats.TotalTerms,
				Postings:    stats.IndexSize,
				IndexTimeMs: float64(elapsed.Microseconds()) / 1000,
			}
			if count > 0 {
				out.AvgDocLength = float64(stats.IndexSize) / float64(count)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Printf("Corpus %s\n", cfg.Source.Root)
		fmt.Printf("  Documents:  %d\n", stats.DocumentsIndexed)
		fmt.Printf("  Terms:      %d\n", stats.TotalTerms)
		fmt.Printf("  Postings:   %d\n", stats.IndexSize)
		fmt.Printf("  Index time: %s\n", elapsed.Round(time.Millisecond))
		if count > 0 {
			fmt.Printf("  Postings/doc: %.1f\n", float64(stats.IndexSize)/float64(count))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&flagStatsJSON, "json", false, "emit statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
