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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestSetActiveSessions(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetActiveSessions(5)
	if got := gaugeValue(t, m.ActiveSessions); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestNilMetricsIsANoOp(t *testing.T) {
	var m *Metrics
	m.SetActiveSessions(5)
	m.SetDealerLoad("D1", 3)
	m.SetDealerStatus("D1", true)
	m.IncPingerProbe("D1")
	m.IncDealerDemote()
}

func TestSetDealerStatusEncodesAvailability(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetDealerStatus("D1", true)
	if got := gaugeValue(t, m.DealerStatus.WithLabelValues("D1")); got != 1 {
		t.Fatalf("expected 1 for available, got %v", got)
	}

	m.SetDealerStatus("D1", false)
	if got := gaugeValue(t, m.DealerStatus.WithLabelValues("D1")); got != 0 {
		t.Fatalf("expected 0 for off, got %v", got)
	}
}
