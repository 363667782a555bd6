package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/memkit/alloc"
	"github.com/hupe1980/memkit/hashmap"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Collector implements alloc.MetricsCollector, hashmap.MetricsObserver and
// prometheus.Collector.
type Collector struct {
	ops           *prometheus.CounterVec
	bytes         *prometheus.CounterVec
	inPlace       prometheus.Counter
	mapResizes    *prometheus.CounterVec
	mapResizeTime prometheus.Histogram
	mapCapacity   prometheus.Gauge
	mapLength     prometheus.Gauge
}

// NewCollector creates a Collector whose metric names start with namespace
// (default "memkit").
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "memkit"
	}
	return &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alloc_operations_total",
			Help:      "Allocator operations by kind and result",
		}, []string{"op", "result"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alloc_bytes_total",
			Help:      "Bytes handed out and handed back",
		}, []string{"op"}),
		inPlace: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alloc_inplace_resizes_total",
			Help:      "Resizes that kept the block address",
		}),
		mapResizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_resizes_total",
			Help:      "Hash map table resizes by direction",
		}, []string{"direction"}),
		mapResizeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "map_resize_duration_seconds",
			Help:      "Time spent rehashing a hash map table",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		mapCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_capacity_buckets",
			Help:      "Bucket count after the most recent resize",
		}),
		mapLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_length_entries",
			Help:      "Entry count at the most recent resize",
		}),
	}
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

// RecordAllocate implements alloc.MetricsCollector.
func (c *Collector) RecordAllocate(size int, err error) {
	c.ops.WithLabelValues("allocate", result(err)).Inc()
	if err == nil {
		c.bytes.WithLabelValues("allocate").Add(float64(size))
	}
}

// RecordResize implements alloc.MetricsCollector.
func (c *Collector) RecordResize(_, _ int, inPlace bool, err error) {
	c.ops.WithLabelValues("resize", result(err)).Inc()
	if err == nil && inPlace {
		c.inPlace.Inc()
	}
}

// RecordFree implements alloc.MetricsCollector.
func (c *Collector) RecordFree(size int) {
	c.ops.WithLabelValues("free", resultOK).Inc()
	c.bytes.WithLabelValues("free").Add(float64(size))
}

// OnResize implements hashmap.MetricsObserver.
func (c *Collector) OnResize(oldCap, newCap, length int, d time.Duration) {
	direction := "grow"
	if newCap < oldCap {
		direction = "shrink"
	}
	c.mapResizes.WithLabelValues(direction).Inc()
	c.mapResizeTime.Observe(d.Seconds())
	c.mapCapacity.Set(float64(newCap))
	c.mapLength.Set(float64(length))
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.ops,
		c.bytes,
		c.inPlace,
		c.mapResizes,
		c.mapResizeTime,
		c.mapCapacity,
		c.mapLength,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

var (
	_ alloc.MetricsCollector  = (*Collector)(nil)
	_ hashmap.MetricsObserver = (*Collector)(nil)
	_ prometheus.Collector    = (*Collector)(nil)
)
