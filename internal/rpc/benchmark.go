package rpc

import (
	"context"
	"sort"
	"time"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"golang.org/x/sync/errgroup"
)

// maxParallelPings bounds concurrent benchmark requests.
const maxParallelPings = 8

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Benchmark pings every URL in parallel. Results keep the input order.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelPings)
	for i, u := range urls {
		g.Go(func() error {
			latency, block, err := chain.NewEVMClient(u).Ping(ctx)
			results[i] = BenchmarkResult{URL: u, Latency: latency, BlockNumber: block, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// SortByLatency orders results healthy-first, then by latency.
func SortByLatency(results []BenchmarkResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		return a.Latency < b.Latency
	})
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// Every endpoint is marked Checked since it has been actively tested.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// SelectBest picks an RPC URL from urls using the named algorithm. An empty
// algorithm means fastest. A single URL is returned without probing it.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}

	algo := Algorithm(algorithm)
	if algo != AlgorithmFailover {
		algo = AlgorithmFastest
	}
	winner, err := NewPicker(algo).Pick(ResultsToEndpoints(Benchmark(ctx, urls)))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
