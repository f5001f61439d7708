package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawrencelj/mdsearch/internal/engine"
)

var (
	flagBenchConcurrency int
	flagBenchDuration    time.Duration
	flagBenchQueries     []string
)

// benchStats collects in-process search timings across workers.
type benchStats struct {
	totalSearches atomic.Int64
	emptySearches atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
}

func newBenchStats() *benchStats {
	return &benchStats{latencies: make([]time.Duration, 0, 100000)}
}

func (s *benchStats) record(duration time.Duration, results int) {
	s.totalSearches.Add(1)
	if results == 0 {
		s.emptySearches.Add(1)
	}
	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()
}

var benchCmd = &cobra.Command{
	Use:   "bench [path]",
	Short: "Benchmark search throughput against an indexed tree",
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
		count, err := indexCorpus(cmd.Context(), eng, src)
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("no markdown files found under %s", cfg.Source.Root)
		}

		queries := flagBenchQueries
		if len(queries) == 0 {
			queries = corpusQueries(eng)
		}
		if len(queries) == 0 {
			return fmt.Errorf("corpus yielded no query terms; pass --queries")
		}

		fmt.Println("=== Search Benchmark ===")
		fmt.Printf("Corpus:      %s (%d documents)\n", cfg.Source.Root, count)
		fmt.Printf("Concurrency: %d\n", flagBenchConcurrency)
		fmt.Printf("Duration:    %s\n", flagBenchDuration)
		fmt.Printf("Queries:     %d unique\n", len(queries))
		fmt.Println()

		stats := runBench(eng, queries)
		printBenchReport(stats, eng, flagBenchDuration)
		return nil
	},
}

// corpusQueries derives a query mix from the index itself so the benchmark
// exercises terms that actually occur in the corpus.
func corpusQueries(eng *engine.Engine) []string {
	var queries []string
	for letter := 'a'; letter <= 'z'; letter++ {
		for _, term := range eng.Suggestions(string(letter)) {
			queries = append(queries, term)
			if len(queries) >= 15 {
				return queries
			}
		}
	}
	return queries
}

func runBench(eng *engine.Engine, queries []string) *benchStats {
	stats := newBenchStats()

	ctx, cancel := context.WithTimeout(context.Background(), flagBenchDuration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < flagBenchConcurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			queryIdx := workerID

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				query := queries[queryIdx%len(queries)]
				queryIdx++

				start := time.Now()
				results := eng.Search(query)
				stats.record(time.Since(start), len(results))
			}
		}(w)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func printBenchReport(stats *benchStats, eng *engine.Engine, duration time.Duration) {
	total := stats.totalSearches.Load()
	empty := stats.emptySearches.Load()
	hits, misses := eng.QueryCacheStats()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Searches:  %d\n", total)
	fmt.Printf("Zero Results:    %d\n", empty)
	if total > 0 {
		fmt.Printf("Searches/sec:    %.2f\n", float64(total)/duration.Seconds())
	}
	if hits+misses > 0 {
		fmt.Printf("Memo Hit Rate:   %.2f%% (%d hits, %d misses)\n",
			float64(hits)/float64(hits+misses)*100, hits, misses)
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", benchPercentile(latencies, 50))
		fmt.Printf("P90:    %s\n", benchPercentile(latencies, 90))
		fmt.Printf("P95:    %s\n", benchPercentile(latencies, 95))
		fmt.Printf("P99:    %s\n", benchPercentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])

		var sumSquared float64
		avgFloat := float64(avg)
		for _, l := range latencies {
			diff := float64(l) - avgFloat
			sumSquared += diff * diff
		}
		stddev := time.Duration(math.Sqrt(sumSquared / float64(len(latencies))))
		fmt.Printf("StdDev: %s\n", stddev)
	}
}

func benchPercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchConcurrency, "concurrency", 8, "number of concurrent search workers")
	benchCmd.Flags().DurationVar(&flagBenchDuration, "duration", 10*time.Second, "benchmark duration")
	benchCmd.Flags().StringSliceVar(&flagBenchQueries, "queries", nil, "comma-separated query list (default derived from the corpus)")
	rootCmd.AddCommand(benchCmd)
}
