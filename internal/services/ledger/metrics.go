package ledger

import (
	"sort"
	"sync"
	"time"
)

// Operation names reported to a MetricsCollector.
const (
	OpDebit            = "debit"
	OpCredit           = "credit"
	OpCompensateCredit = "compensate_credit"
	OpCompensateDebit  = "compensate_debit"
)

// Operation results reported to a MetricsCollector.
const (
	ResultOK                = "ok"
	ResultInsufficientFunds = "insufficient_funds"
	ResultNotFound          = "not_found"
	ResultError             = "error"
)

type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}

// Counters is an in-memory MetricsCollector, exposed on the health endpoint.
type Counters struct {
	mu        sync.Mutex
	results   map[string]int64
	durations map[string]time.Duration
}

func NewCounters() *Counters {
	return &Counters{
		results:   make(map[string]int64),
		durations: make(map[string]time.Duration),
	}
}

func (c *Counters) RecordOperationDuration(operation string, duration time.Duration) {
	c.mu.Lock()
	c.durations[operation] += duration
	c.mu.Unlock()
}

func (c *Counters) RecordOperationResult(operation, result string) {
	c.mu.Lock()
	c.results[operation+"."+result]++
	c.mu.Unlock()
}

// Count returns how many times operation finished with result.
func (c *Counters) Count(operation, result string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[operation+"."+result]
}

// OperationStats summarizes one ledger operation.
type OperationStats struct {
	Operation     string           `json:"operation"`
	Results       map[string]int64 `json:"results"`
	TotalDuration string           `json:"total_duration"`
}

// Snapshot returns the current counters ordered by operation name.
func (c *Counters) Snapshot() []OperationStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	byOp := make(map[string]*OperationStats)
	for _, op := range []string{OpDebit, OpCredit, OpCompensateCredit, OpCompensateDebit} {
		byOp[op] = &OperationStats{Operation: op, Results: map[string]int64{}}
	}
	for key, n := range c.results {
		op, result := splitKey(key)
		stats, ok := byOp[op]
		if !ok {
			stats = &OperationStats{Operation: op, Results: map[string]int64{}}
			byOp[op] = stats
		}
		stats.Results[result] = n
	}

	out := make([]OperationStats, 0, len(byOp))
	for op, stats := range byOp {
		stats.TotalDuration = c.durations[op].String()
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

func splitKey(key string) (string, string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
