// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package stats exports the values computed by the decision engine as
// Prometheus metrics.
package stats

import (
	"net/http"
	"strconv"

	"github.com/pion/abrcc/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "abrcc"

// Recorder is an abr.Observer backed by its own Prometheus registry. One
// Recorder may observe several engines.
type Recorder struct {
	registry *prometheus.Registry

	decisions     *prometheus.CounterVec
	bandwidth     *prometheus.GaugeVec
	aggressivity  prometheus.Gauge
	targetRate    prometheus.Gauge
	degraded      prometheus.Counter
	requests      prometheus.Counter
	requestErrors prometheus.Counter
}

// NewRecorder creates and registers the metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Committed decisions by quality",
		}, []string{"quality"}),
		bandwidth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bandwidth_kbps",
			Help:      "Bandwidth estimates of the strategy",
		}, []string{"kind"}),
		aggressivity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggressivity",
			Help:      "Last aggressivity proposed to the congestion controller",
		}),
		targetRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_rate_kbps",
			Help:      "Last bandwidth target",
		}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_total",
			Help:      "Decisions taken with a reduced lookahead",
		}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests received",
		}),
		requestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "HTTP responses with a 4xx or 5xx status",
		}),
	}
	r.registry.MustRegister(
		r.decisions,
		r.bandwidth,
		r.aggressivity,
		r.targetRate,
		r.degraded,
		r.requests,
		r.requestErrors,
	)

	return r
}

// Registry returns the registry holding the metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// OnDecision implements abr.Observer.
func (r *Recorder) OnDecision(decision schema.Decision) {
	r.decisions.WithLabelValues(strconv.Itoa(decision.Quality)).Inc()
}

// OnBandwidth implements abr.Observer.
func (r *Recorder) OnBandwidth(last, average float64) {
	r.bandwidth.WithLabelValues("last").Set(last)
	r.bandwidth.WithLabelValues("average").Set(average)
}

// OnAggressivity implements abr.Observer.
func (r *Recorder) OnAggressivity(aggressivity float64) {
	r.aggressivity.Set(aggressivity)
}

// OnTargetRate implements abr.Observer.
func (r *Recorder) OnTargetRate(kbps float64) {
	r.targetRate.Set(kbps)
}

// OnDegraded implements abr.Observer.
func (r *Recorder) OnDegraded() {
	r.degraded.Inc()
}
