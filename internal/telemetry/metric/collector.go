package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector reports values that are read at scrape time rather than updated
// on every operation.
type Collector struct {
	storeKeys *prometheus.Desc
	keys      func() int
	engine    string
}

// NewCollector returns a collector reporting the key count of a store.
// keys is called on every scrape and must be safe for concurrent use.
func NewCollector(engine string, keys func() int) *Collector {
	return &Collector{
		storeKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Number of keys held by the store.",
			[]string{"engine"}, nil,
		),
		keys:   keys,
		engine: engine,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.storeKeys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.storeKeys, prometheus.GaugeValue, float64(c.keys()), c.engine)
}
