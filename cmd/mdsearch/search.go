package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawrencelj/mdsearch/internal/index"
)

var (
	flagLimit         int
	flagCaseSensitive bool
	flagWholeWords    bool
	flagRegex         bool
	flagHeadingsOnly  bool
	flagNoContext     bool
	flagContextLength int
	flagJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search an indexed markdown tree from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")

		eng, _, src, _ := buildEngine(cfg, nil)
		if _, err := indexCorpus(cmd.Context(), eng, src); err != nil {
			return err
		}

		opts := index.SearchOptions{
			CaseSensitive:      flagCaseSensitive,
			WholeWords:         flagWholeWords,
			UseRegex:           flagRegex,
			SearchHeadingsOnly: flagHeadingsOnly,
			MaxResults:         cfg.Search.MaxResults,
			IncludeContext:     !flagNoContext,
			ContextLength:      cfg.Search.ContextLength,
		}
		if flagLimit > 0 {
			opts.MaxResults = flagLimit
		}
		if flagContextLength > 0 {
			opts.ContextLength = flagContextLength
		}

		start := time.Now()
		results := eng.AdvancedSearch(query, opts, nil)
		elapsed := time.Since(start)

		if flagJSON {
			if results == nil {
				results = []index.SearchResult{}
			}
			out := struct {
				Query   string               `json:"query"`
				Total   int                  `json:"total"`
				Results []index.SearchResult `json:"results"`
			}{Query: query, Total: len(results), Results: results}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if len(results) == 0 {
			fmt.Printf("No results for %q\n", query)
			return nil
		}

		paths := make(map[string]string)
		for _, ref := range eng.References() {
			path := ref.Path
			if path == "" {
				path = ref.Title
			}
			paths[ref.ID] = path
		}

		fmt.Printf("%d results for %q in %s\n\n", len(results), query, elapsed.Round(time.Microsecond))
		for _, r := range results {
			loc := paths[r.DocumentID]
			if loc == "" {
				loc = r.DocumentID
			}
			fmt.Printf("%s:%d:%d  score %.2f", loc, r.Line, r.Column, r.Score)
			if r.HeadingContext != "" {
				fmt.Printf("  under %q", r.HeadingContext)
			}
			fmt.Println()
			if r.Context != "" {
				fmt.Printf("    %s\n", r.Context)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum results to return (default from config)")
	searchCmd.Flags().BoolVar(&flagCaseSensitive, "case-sensitive", false, "match case exactly")
	searchCmd.Flags().BoolVar(&flagWholeWords, "whole-words", false, "match whole words only")
	searchCmd.Flags().BoolVar(&flagRegex, "regex", false, "treat the query as a regular expression")
	searchCmd.Flags().BoolVar(&flagHeadingsOnly, "headings-only", false, "search heading lines only")
	searchCmd.Flags().BoolVar(&flagNoContext, "no-context", false, "omit surrounding context from results")
	searchCmd.Flags().IntVar(&flagContextLength, "context-length", 0, "context window size in characters (default from config)")
	searchCmd.Flags().BoolVar(&flagJSON, "json", false, "emit results as JSON")
	rootCmd.AddCommand(searchCmd)
}
