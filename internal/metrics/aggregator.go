// Package metrics provides the process-wide, concurrency-safe request
// counters and latency statistics for the serving layer.
package metrics

import (
	"math"
	"sync"
)

// Aggregator accumulates operational counters across requests. All
// mutations and reads serialize on one mutex, so any snapshot reflects
// a single consistent prefix of the recorded events; callers never see
// a total that disagrees with the average it was computed with.
// The zero value is not usable; create one with NewAggregator.
type Aggregator struct {
	mu sync.Mutex

	// Request counters.
	total        int64
	single       int64
	batchRecords int64

	// Latency statistics in milliseconds. average is an exact
	// streaming mean over latencyCount samples.
	latencyCount   int64
	latencyAverage float64
	latencyLast    float64

	// decisions counts occurrences per decision label.
	decisions map[string]int64
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{decisions: make(map[string]int64)}
}

// RecordRequest counts one served request and folds its duration into
// the streaming latency mean. The mean is exact regardless of call
// ordering: with n samples it holds sum/n at all times.
func (a *Aggregator) RecordRequest(durationMS float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.latencyLast = durationMS
	a.latencyCount++
	n := float64(a.latencyCount)
	a.latencyAverage = (a.latencyAverage*(n-1) + durationMS) / n
}

// RecordSingle counts one single-prediction request.
func (a *Aggregator) RecordSingle() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.single++
}

// RecordBatch adds a batch's record count to the batch-record counter.
func (a *Aggregator) RecordBatch(size int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.batchRecords += int64(size)
}

// RecordDecision counts one occurrence of the given decision label.
// A blank label is a no-op.
func (a *Aggregator) RecordDecision(label string) {
	if label == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.decisions[label]++
}

// Snapshot returns an immutable copy of all counters as of the call.
// Latency values are rounded to two decimals for display; the internal
// running mean keeps full precision. The decisions map is deep-copied,
// so callers can hold or mutate the snapshot freely.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	decisions := make(map[string]int64, len(a.decisions))
	for label, count := range a.decisions {
		decisions[label] = count
	}

	return Snapshot{
		Requests: RequestCounts{
			Total:        a.total,
			Single:       a.single,
			BatchRecords: a.batchRecords,
		},
		Latency: LatencyStats{
			Average: round2(a.latencyAverage),
			Last:    round2(a.latencyLast),
		},
		ModelDecisions: decisions,
	}
}

// Snapshot is a point-in-time copy of the aggregator's state.
type Snapshot struct {
	Requests       RequestCounts    `json:"requests"`
	Latency        LatencyStats     `json:"latency_ms"`
	ModelDecisions map[string]int64 `json:"model_decisions"`
}

// RequestCounts groups the request counters.
type RequestCounts struct {
	// Total counts every request that passed through the serving layer.
	Total int64 `json:"total"`

	// Single counts single-prediction requests.
	Single int64 `json:"single"`

	// BatchRecords counts individual records served via batch requests.
	BatchRecords int64 `json:"batch_records"`
}

// LatencyStats groups the request latency statistics in milliseconds.
type LatencyStats struct {
	// Average is the exact mean over all recorded durations.
	Average float64 `json:"average"`

	// Last is the most recently recorded duration.
	Last float64 `json:"last"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
