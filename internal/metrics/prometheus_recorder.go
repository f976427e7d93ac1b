package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	footnotes     prom.Counter
	qrCodes       prom.Counter
	qrFailures    prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "qrnotes",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual conversion stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "qrnotes",
			Name:      "run_duration_seconds",
			Help:      "Total conversion run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "qrnotes",
			Name:      "run_outcomes_total",
			Help:      "Conversion runs by final status",
		}, []string{"outcome"}),
		footnotes: prom.NewCounter(prom.CounterOpts{
			Namespace: "qrnotes",
			Name:      "footnotes_total",
			Help:      "Footnotes created across runs",
		}),
		qrCodes: prom.NewCounter(prom.CounterOpts{
			Namespace: "qrnotes",
			Name:      "qr_codes_total",
			Help:      "QR references created across runs",
		}),
		qrFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "qrnotes",
			Name:      "qr_emission_failures_total",
			Help:      "QR images that could not be emitted",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.runOutcome, pr.footnotes, pr.qrCodes, pr.qrFailures)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome Outcome) {
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddFootnotes(n int) { p.footnotes.Add(float64(n)) }
func (p *PrometheusRecorder) AddQRCodes(n int)   { p.qrCodes.Add(float64(n)) }
func (p *PrometheusRecorder) IncQREmissionFailure() {
	p.qrFailures.Inc()
}

// WriteTextfile writes every metric gathered from g to path in the
// node_exporter textfile collector format. The file is replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	return prom.WriteToTextfile(path, g)
}
