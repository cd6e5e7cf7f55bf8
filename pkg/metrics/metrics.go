// Package metrics exports prometheus counters and histograms for scheme
// operations. Scheme packages never import it; the facade reports through
// an Observer.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/xerrors"
)

// Observer receives one call per completed scheme operation.
type Observer interface {
	Operation(scheme, op string, took time.Duration)
	SignAttempts(scheme string, attempts int)
}

// Collector is an Observer backed by prometheus collectors registered on
// its own registry.
type Collector struct {
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	attempts   *prometheus.HistogramVec
}

// NewCollector registers the pqgo collectors on a fresh registry. With
// process set, the go runtime and process collectors are added too.
func NewCollector(process bool) *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pqgo_operations_total",
			Help: "Number of completed scheme operations",
		}, []string{"scheme", "op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pqgo_operation_duration_seconds",
			Help:    "Histogram of scheme operation latencies",
			Buckets: prometheus.ExponentialBuckets(25e-6, 2, 14),
		}, []string{"scheme", "op"}),
		attempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pqgo_sign_attempts",
			Help:    "Rejection sampling iterations per signature",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"scheme"}),
	}
	c.Registry.MustRegister(c.operations, c.duration, c.attempts)
	if process {
		c.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

func (c *Collector) Operation(scheme, op string, took time.Duration) {
	c.operations.WithLabelValues(scheme, op).Inc()
	c.duration.WithLabelValues(scheme, op).Observe(took.Seconds())
}

func (c *Collector) SignAttempts(scheme string, attempts int) {
	c.attempts.WithLabelValues(scheme).Observe(float64(attempts))
}

// WriteText writes every metric family of the registry in the prometheus
// text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.Registry.Gather()
	if err != nil {
		return xerrors.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return xerrors.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

type nop struct{}

func (nop) Operation(string, string, time.Duration) {}
func (nop) SignAttempts(string, int)                {}

// Nop discards every observation.
var Nop Observer = nop{}
