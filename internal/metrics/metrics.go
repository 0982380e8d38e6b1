/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics exposes the gateway's Prometheus gauges and counters,
// served on a small internal mux separate from client-facing Acceptors (the
// supplemented metrics_bind directive).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide set of gauges/counters. A nil *Metrics is a
// valid no-op collector so callers never need to check whether metrics are
// enabled before recording.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	DealerLoad     *prometheus.GaugeVec
	DealerStatus   *prometheus.GaugeVec
	PingerProbes   *prometheus.CounterVec
	DealerDemotes  prometheus.Counter
}

// New builds and registers the gateway's metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blastbeat_active_sessions",
			Help: "Number of sessions currently tracked in the session hash table.",
		}),
		DealerLoad: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "blastbeat_dealer_load",
			Help: "Current outstanding request count per dealer.",
		}, []string{"dealer"}),
		DealerStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "blastbeat_dealer_status",
			Help: "Dealer status, 1 for available and 0 for off.",
		}, []string{"dealer"}),
		PingerProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blastbeat_pinger_probes_total",
			Help: "Total liveness probe frames sent per dealer.",
		}, []string{"dealer"}),
		DealerDemotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blastbeat_dealer_demotes_total",
			Help: "Total number of times any dealer was demoted to off.",
		}),
	}

	reg.MustRegister(m.ActiveSessions, m.DealerLoad, m.DealerStatus, m.PingerProbes, m.DealerDemotes)
	return m
}

// Null returns nil, usable anywhere a *Metrics is expected when metrics_bind
// is unset: every method below tolerates a nil receiver.
func Null() *Metrics { return nil }

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) SetDealerLoad(identity string, load int64) {
	if m == nil {
		return
	}
	m.DealerLoad.WithLabelValues(identity).Set(float64(load))
}

func (m *Metrics) SetDealerStatus(identity string, available bool) {
	if m == nil {
		return
	}
	v := 0.0
	if available {
		v = 1.0
	}
	m.DealerStatus.WithLabelValues(identity).Set(v)
}

func (m *Metrics) IncPingerProbe(identity string) {
	if m == nil {
		return
	}
	m.PingerProbes.WithLabelValues(identity).Inc()
}

func (m *Metrics) IncDealerDemote() {
	if m == nil {
		return
	}
	m.DealerDemotes.Inc()
}

// Handler serves /metrics in the exposition format, for mounting on the
// internal mux named by the metrics_bind config directive.
func Handler() http.Handler {
	return promhttp.Handler()
}
