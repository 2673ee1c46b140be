// Copyright © 2026 The GSN Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prometheus

import (
	"time"

	"github.com/gsnio/gsn/pkg/foundation/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type gauge struct {
	pg prometheus.Gauge
}

func (g *gauge) Inc(vs ...float64) {
	if len(vs) == 0 {
		g.pg.Inc()
		return
	}
	g.pg.Add(sum(vs))
}

func (g *gauge) Dec(vs ...float64) {
	if len(vs) == 0 {
		g.pg.Dec()
		return
	}
	g.pg.Sub(sum(vs))
}

func (g *gauge) Set(v float64) {
	g.pg.Set(v)
}

type labeledGauge struct {
	vec *prometheus.GaugeVec
}

func (lg *labeledGauge) WithValues(vs ...string) metrics.Gauge {
	return &gauge{pg: lg.vec.WithLabelValues(vs...)}
}

type timer struct {
	ph prometheus.Observer
}

func (t *timer) Update(d time.Duration) {
	t.ph.Observe(d.Seconds())
}

func (t *timer) UpdateSince(start time.Time) {
	t.Update(time.Since(start))
}

type labeledTimer struct {
	vec *prometheus.HistogramVec
}

func (lt *labeledTimer) WithValues(vs ...string) metrics.Timer {
	return &timer{ph: lt.vec.WithLabelValues(vs...)}
}
