package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// benchMetrics tracks benchmark results.
type benchMetrics struct {
	Processed atomic.Int64
	Errors    atomic.Int64

	mu        sync.Mutex
	statuses  map[string]int64
	latencies []time.Duration
}

func (m *benchMetrics) record(status string, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statuses == nil {
		m.statuses = make(map[string]int64)
	}
	if status != "" {
		m.statuses[status]++
	}
	m.latencies = append(m.latencies, latency)
}

// percentile returns the p-th latency percentile (nearest rank).
func (m *benchMetrics) percentile(p float64) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.latencies) == 0 {
		return 0
	}
	sorted := slices.Clone(m.latencies)
	slices.Sort(sorted)
	rank := int(p/100*float64(len(sorted))+0.5) - 1
	rank = min(max(rank, 0), len(sorted)-1)
	return sorted[rank]
}

func newBenchCmd(opts *rootOptions) *cobra.Command {
	var (
		requests    int
		concurrency int
		failFast    bool
	)

	cmd := &cobra.Command{
		Use:   "bench FILE...",
		Short: "Replay validation requests against the server and report latency",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]*domain.ValidationInput, 0, len(args))
			for _, path := range args {
				var in domain.ValidationInput
				if err := readJSON(cmd, path, &in); err != nil {
					return err
				}
				inputs = append(inputs, &in)
			}

			c := opts.client()
			if err := c.health(cmd.Context()); err != nil {
				return fmt.Errorf("bce not reachable at %s: %w", opts.baseURL, err)
			}

			start := time.Now()
			m, err := runBench(cmd.Context(), c, inputs, requests, concurrency, failFast)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), m, time.Since(start))
			return nil
		},
	}

	cmd.Flags().IntVarP(&requests, "requests", "n", 1000, "Number of validations to send")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 10, "Concurrent requests")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first request error")
	return cmd
}

// runBench sends requests validations, cycling through inputs.
func runBench(ctx context.Context, c *client, inputs []*domain.ValidationInput, requests, concurrency int, failFast bool) (*benchMetrics, error) {
	m := &benchMetrics{}
	if len(inputs) == 0 || requests <= 0 {
		return m, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i := 0; i < requests && ctx.Err() == nil; i++ {
		in := inputs[i%len(inputs)]
		g.Go(func() error {
			start := time.Now()
			v, err := c.validate(ctx, in)
			m.Processed.Add(1)

			if err != nil {
				m.Errors.Add(1)
				m.record("", time.Since(start))
				slog.Debug("validation failed", "item", in.ItemNo, "error", err)
				if failFast {
					return err
				}
				return nil
			}
			m.record(v.Status, time.Since(start))
			return nil
		})
	}

	return m, g.Wait()
}

func printBench(w io.Writer, m *benchMetrics, duration time.Duration) {
	processed := m.Processed.Load()

	fmt.Fprintln(w, "\nBENCHMARK RESULTS")
	fmt.Fprintf(w, "   Total Processed:  %d\n", processed)
	fmt.Fprintf(w, "   Errors:           %d\n", m.Errors.Load())

	statuses := make([]string, 0, len(m.statuses))
	for s := range m.statuses {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "   %-17s %d\n", s+":", m.statuses[s])
	}

	fmt.Fprintf(w, "\n   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if processed > 0 {
		fmt.Fprintf(w, "   Latency p50:      %v\n", m.percentile(50))
		fmt.Fprintf(w, "   Latency p95:      %v\n", m.percentile(95))
		fmt.Fprintf(w, "   Latency p99:      %v\n", m.percentile(99))
		fmt.Fprintf(w, "   Throughput:       %.2f req/sec\n", float64(processed)/duration.Seconds())
	}
	fmt.Fprintln(w)
}
