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
	"sync"

	"github.com/gsnio/gsn/pkg/foundation/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry creates metrics backed by the prometheus client. It implements
// metrics.Registry and prometheus.Collector, so it can be registered in a
// prometheus registry to expose all GSN metrics.
type Registry struct {
	labels map[string]string

	mu         sync.Mutex
	collectors []prometheus.Collector
}

// NewRegistry returns a registry that attaches the constant labels to every
// metric it creates.
func NewRegistry(labels map[string]string) *Registry {
	return &Registry{labels: labels}
}

func (r *Registry) NewCounter(name, help string, _ ...metrics.Option) metrics.Counter {
	pc := prometheus.NewCounter(r.counterOpts(name, help))
	r.add(pc)
	return &counter{pc: pc}
}

func (r *Registry) NewLabeledCounter(name, help string, labels []string, _ ...metrics.Option) metrics.LabeledCounter {
	vec := prometheus.NewCounterVec(r.counterOpts(name, help), labels)
	r.add(vec)
	return &labeledCounter{vec: vec}
}

func (r *Registry) NewGauge(name, help string, _ ...metrics.Option) metrics.Gauge {
	pg := prometheus.NewGauge(r.gaugeOpts(name, help))
	r.add(pg)
	return &gauge{pg: pg}
}

func (r *Registry) NewLabeledGauge(name, help string, labels []string, _ ...metrics.Option) metrics.LabeledGauge {
	vec := prometheus.NewGaugeVec(r.gaugeOpts(name, help), labels)
	r.add(vec)
	return &labeledGauge{vec: vec}
}

func (r *Registry) NewTimer(name, help string, opts ...metrics.Option) metrics.Timer {
	ph := prometheus.NewHistogram(r.histogramOpts(name, help, opts))
	r.add(ph)
	return &timer{ph: ph}
}

func (r *Registry) NewLabeledTimer(name, help string, labels []string, opts ...metrics.Option) metrics.LabeledTimer {
	vec := prometheus.NewHistogramVec(r.histogramOpts(name, help, opts), labels)
	r.add(vec)
	return &labeledTimer{vec: vec}
}

func (r *Registry) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Name: name, Help: help, ConstLabels: r.labels}
}

func (r *Registry) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Name: name, Help: help, ConstLabels: r.labels}
}

func (r *Registry) histogramOpts(name, help string, opts []metrics.Option) prometheus.HistogramOpts {
	return applyHistogramOpts(prometheus.HistogramOpts{Name: name, Help: help, ConstLabels: r.labels}, opts)
}

func (r *Registry) add(c prometheus.Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors = append(r.collectors, c)
}

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.collectors {
		c.Collect(ch)
	}
}
