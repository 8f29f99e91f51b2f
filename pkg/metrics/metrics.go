/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus metrics for sniff runs. Counts outcomes per deciding
detector, records sniff latency and sample sizes, and exports everything to a
node-exporter style textfile at the end of a run.
*/

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dialect_sniffer"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder owns a private registry so tests and runs never share state
type Recorder struct {
	registry *prometheus.Registry

	SniffsTotal   *prometheus.CounterVec
	SniffDuration prometheus.Histogram
	SampleBytes   prometheus.Histogram
}

// NewRecorder creates and registers the sniff metrics
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		SniffsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sniffs_total",
			Help:      "Sources sniffed, by outcome and deciding detector.",
		}, []string{"outcome", "detector"}),
		SniffDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sniff_duration_seconds",
			Help:      "Time spent loading and sniffing one source.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		SampleBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_bytes",
			Help:      "Size of the sample handed to the sniffer.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}

	r.registry.MustRegister(r.SniffsTotal, r.SniffDuration, r.SampleBytes)
	return r
}

// ObserveSniff records one source. detector is empty for failures.
func (r *Recorder) ObserveSniff(detector string, failed bool, elapsed time.Duration, sampleBytes int) {
	outcome := OutcomeSuccess
	if failed {
		outcome = OutcomeFailure
		detector = "none"
	}
	r.SniffsTotal.WithLabelValues(outcome, detector).Inc()
	r.SniffDuration.Observe(elapsed.Seconds())
	if sampleBytes > 0 {
		r.SampleBytes.Observe(float64(sampleBytes))
	}
}

// WriteTextfile exports the registry in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
