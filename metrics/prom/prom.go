// Package prom exports matchgrid operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	h := matchgrid.NewHitHasher(matchgrid.WithMetricsCollector(prom.MustNew(reg)))
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/matchgrid"
)

var _ matchgrid.MetricsCollector = (*Collector)(nil)

// Collector implements matchgrid.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency   *prometheus.HistogramVec
	hits        *prometheus.CounterVec
	neighbors   prometheus.Counter
	groups      prometheus.Gauge
	estimate    prometheus.Gauge
	saturations prometheus.Counter
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchgrid_operation_latency_seconds",
			Help:    "Latency of matchgrid operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchgrid_hits_indexed_total",
			Help: "Hits accepted per index",
		}, []string{"component"}),
		neighbors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchgrid_neighbor_hits_total",
			Help: "Hits returned by neighbor queries",
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchgrid_components",
			Help: "Number of groups in the last connected-component decomposition",
		}),
		estimate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchgrid_match_count_estimate",
			Help: "Last match-count estimate",
		}),
		saturations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchgrid_match_count_saturated_total",
			Help: "Match-count estimates that reached the cap",
		}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.hits, c.neighbors, c.groups, c.estimate, c.saturations} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is New that panics on registration errors.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) RecordInsert(component string, count int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("insert_"+component, status(err)).Observe(d.Seconds())
	if err == nil {
		c.hits.WithLabelValues(component).Add(float64(count))
	}
}

func (c *Collector) RecordNeighborQuery(_, found int, d time.Duration) {
	c.opLatency.WithLabelValues("neighbor_query", "success").Observe(d.Seconds())
	c.neighbors.Add(float64(found))
}

func (c *Collector) RecordConnectedComponents(_, groups int, d time.Duration) {
	c.opLatency.WithLabelValues("connected_components", "success").Observe(d.Seconds())
	c.groups.Set(float64(groups))
}

func (c *Collector) RecordMatchCount(estimate uint64, saturated bool, d time.Duration) {
	c.opLatency.WithLabelValues("match_count", "success").Observe(d.Seconds())
	c.estimate.Set(float64(estimate))
	if saturated {
		c.saturations.Inc()
	}
}
