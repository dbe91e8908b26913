package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	// Cache winner for this duration before re-scoring.
	cacheTTL = 5 * time.Minute
)

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool
}

// Picker selects an RPC endpoint according to the configured algorithm. The
// fastest winner is cached so a long-running watch does not flap between
// near-equal nodes.
type Picker struct {
	algo        Algorithm
	mu          sync.Mutex
	cachedURL   string
	cacheExpiry time.Time
	now         func() time.Time
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}
	if p.algo == AlgorithmFailover {
		return pickFailover(endpoints)
	}
	return p.pickFastest(endpoints)
}

func (p *Picker) pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedURL != "" && p.now().Before(p.cacheExpiry) {
		for i := range endpoints {
			e := &endpoints[i]
			if e.URL == p.cachedURL && (!e.Checked || e.Healthy) {
				return e, nil
			}
		}
	}

	candidates := healthyEndpoints(endpoints)

	var bestBlock uint64
	for _, e := range candidates {
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	var bestScore float64
	for _, e := range candidates {
		if bestBlock > 0 && bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		s := score(e, bestBlock)
		if winner == nil || s > bestScore {
			winner = e
			bestScore = s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}

	p.cachedURL = winner.URL
	p.cacheExpiry = p.now().Add(cacheTTL)
	return winner, nil
}

// pickFailover returns the first endpoint not known to be unhealthy.
func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		return e, nil
	}
	return nil, ErrNoHealthyRPC
}

// --- scoring ---

func score(e *Endpoint, bestBlock uint64) float64 {
	var s float64

	// Higher is faster; sub-millisecond latency counts as one millisecond.
	if e.Latency > 0 {
		ms := e.Latency.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		s += 1000.0 / float64(ms)
	}

	// Lose one point per block behind the best node.
	if bestBlock > 0 {
		s -= float64(bestBlock - e.BlockNumber)
	}
	return s
}

// healthyEndpoints returns endpoints eligible for selection. Unchecked
// endpoints are always candidates.
func healthyEndpoints(endpoints []Endpoint) []*Endpoint {
	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
