package matchgrid

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordInsert is called after each batch of hits is indexed.
	// component names the index ("hasher", "neighbor_finder", "counter"),
	// count is the number of hits in the batch, err is nil if successful.
	RecordInsert(component string, count int, duration time.Duration, err error)

	// RecordNeighborQuery is called after each neighbor query.
	RecordNeighborQuery(queryHits, found int, duration time.Duration)

	// RecordConnectedComponents is called after each component decomposition.
	RecordConnectedComponents(hits, groups int, duration time.Duration)

	// RecordMatchCount is called after each match-count estimate.
	// saturated is true when the estimate hit TooManyMatches.
	RecordMatchCount(estimate uint64, saturated bool, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(string, int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordNeighborQuery(int, int, time.Duration)       {}
func (NoopMetricsCollector) RecordConnectedComponents(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordMatchCount(uint64, bool, time.Duration)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount        atomic.Int64
	InsertHits         atomic.Int64
	InsertErrors       atomic.Int64
	InsertTotalNanos   atomic.Int64
	NeighborQueries    atomic.Int64
	NeighborsFound     atomic.Int64
	NeighborTotalNanos atomic.Int64
	ComponentRuns      atomic.Int64
	ComponentGroups    atomic.Int64
	MatchCounts        atomic.Int64
	MatchSaturations   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(_ string, count int, duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
		return
	}
	b.InsertHits.Add(int64(count))
}

// RecordNeighborQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNeighborQuery(_, found int, duration time.Duration) {
	b.NeighborQueries.Add(1)
	b.NeighborsFound.Add(int64(found))
	b.NeighborTotalNanos.Add(duration.Nanoseconds())
}

// RecordConnectedComponents implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConnectedComponents(_, groups int, _ time.Duration) {
	b.ComponentRuns.Add(1)
	b.ComponentGroups.Add(int64(groups))
}

// RecordMatchCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatchCount(_ uint64, saturated bool, _ time.Duration) {
	b.MatchCounts.Add(1)
	if saturated {
		b.MatchSaturations.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:      b.InsertCount.Load(),
		InsertHits:       b.InsertHits.Load(),
		InsertErrors:     b.InsertErrors.Load(),
		InsertAvgNanos:   avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		NeighborQueries:  b.NeighborQueries.Load(),
		NeighborsFound:   b.NeighborsFound.Load(),
		NeighborAvgNanos: avg(b.NeighborTotalNanos.Load(), b.NeighborQueries.Load()),
		ComponentRuns:    b.ComponentRuns.Load(),
		ComponentGroups:  b.ComponentGroups.Load(),
		MatchCounts:      b.MatchCounts.Load(),
		MatchSaturations: b.MatchSaturations.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount      int64
	InsertHits       int64
	InsertErrors     int64
	InsertAvgNanos   int64
	NeighborQueries  int64
	NeighborsFound   int64
	NeighborAvgNanos int64
	ComponentRuns    int64
	ComponentGroups  int64
	MatchCounts      int64
	MatchSaturations int64
}
