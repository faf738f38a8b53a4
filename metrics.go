package narcissus

import "github.com/prometheus/client_golang/prometheus"

// Collector adapts Stats() to Prometheus' collector interface so a
// ring exchange can be registered directly with a registry, rather
// than having something else poll Stats() and push it into separate
// CounterVec/GaugeVec fields.
type Collector struct {
	source statsSource

	numSegments    *prometheus.Desc
	numReceivers   *prometheus.Desc
	pinnedSegments *prometheus.Desc
	conflations    *prometheus.Desc
	publishes      *prometheus.Desc
	borrows        *prometheus.Desc
}

// NewCollector wraps source (a *Sender or *Receiver) for registration
// with a prometheus.Registry.
func NewCollector(source statsSource) *Collector {
	return &Collector{
		source: source,
		numSegments: prometheus.NewDesc(
			"narcissus_pool_segments", "Number of segments currently allocated in the pool.", nil, nil),
		numReceivers: prometheus.NewDesc(
			"narcissus_pool_receivers", "Number of receivers currently attached.", nil, nil),
		pinnedSegments: prometheus.NewDesc(
			"narcissus_pool_pinned_segments", "Number of segments currently borrowed by a receiver.", nil, nil),
		conflations: prometheus.NewDesc(
			"narcissus_conflations_total", "Total publishes that overwrote the previous frame in place.", nil, nil),
		publishes: prometheus.NewDesc(
			"narcissus_publishes_total", "Total successful publishes.", nil, nil),
		borrows: prometheus.NewDesc(
			"narcissus_borrows_total", "Total borrows taken across the exchange's lifetime.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.numSegments
	ch <- c.numReceivers
	ch <- c.pinnedSegments
	ch <- c.conflations
	ch <- c.publishes
	ch <- c.borrows
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.numSegments, prometheus.GaugeValue, float64(s.NumSegments))
	ch <- prometheus.MustNewConstMetric(c.numReceivers, prometheus.GaugeValue, float64(s.NumReceivers))
	ch <- prometheus.MustNewConstMetric(c.pinnedSegments, prometheus.GaugeValue, float64(s.PinnedSegments))
	ch <- prometheus.MustNewConstMetric(c.conflations, prometheus.CounterValue, float64(s.Conflations))
	ch <- prometheus.MustNewConstMetric(c.publishes, prometheus.CounterValue, float64(s.Publishes))
	ch <- prometheus.MustNewConstMetric(c.borrows, prometheus.CounterValue, float64(s.Borrows))
}
