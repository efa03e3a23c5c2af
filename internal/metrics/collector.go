package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source metrics
	LinesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logship_lines_read_total",
			Help: "Total raw lines read from the source",
		},
	)
	LinesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logship_lines_discarded_total",
			Help: "Total blank lines discarded before batching",
		},
	)

	// Sink metrics
	BatchesShipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logship_batches_shipped_total",
			Help: "Total batches successfully appended to the remote store",
		},
	)
	EventsShipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logship_events_shipped_total",
			Help: "Total log events successfully appended to the remote store",
		},
	)
	BatchesAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logship_batches_abandoned_total",
			Help: "Total batches abandoned after a non-throttling append failure",
		},
	)
	ThrottleRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logship_throttle_retries_total",
			Help: "Total append retries caused by remote throttling",
		},
	)

	// Pipeline metrics
	PipelineState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "logship_pipeline_state",
			Help: "Current pipeline state (0=idle 1=provisioning 2=running 3=draining 4=cleanup 5=done 6=failed)",
		},
	)
)
