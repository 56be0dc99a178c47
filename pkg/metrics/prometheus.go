package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	signalsComputed *prometheus.CounterVec
	batchFailures   *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	lastTSI         *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cascadian_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "market_id"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cascadian_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		signalsComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cascadian_signals_computed_total",
				Help: "Signals computed by kind",
			},
			[]string{"kind", "market_id"},
		),
		batchFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cascadian_batch_failures_total",
				Help: "Batch items that failed and were omitted",
			},
			[]string{"kind"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cascadian_last_price",
				Help: "Last recorded price for a market",
			},
			[]string{"market_id"},
		),
		lastTSI: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cascadian_last_tsi_fast",
				Help: "Last computed TSI fast line for a market",
			},
			[]string{"market_id"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cascadian_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, marketID string) {
	r.messagesSent.WithLabelValues(backend, marketID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSignalComputed records one successful signal computation.
func (r *Recorder) RecordSignalComputed(kind, marketID string) {
	r.signalsComputed.WithLabelValues(kind, marketID).Inc()
}

// RecordBatchFailure records one omitted batch item.
func (r *Recorder) RecordBatchFailure(kind string) {
	r.batchFailures.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a market.
func (r *Recorder) RecordLastPrice(marketID string, price float64) {
	r.lastPrice.WithLabelValues(marketID).Set(price)
}

// RecordLastTSI records the last TSI fast line for a market.
func (r *Recorder) RecordLastTSI(marketID string, fast float64) {
	r.lastTSI.WithLabelValues(marketID).Set(fast)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
