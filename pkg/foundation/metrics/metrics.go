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

// Package metrics is a thin facade over metric backends. Metrics are declared
// once as package variables (see package measure) and are created in every
// Registry passed to Register, including registries registered later.
package metrics

import (
	"sync"
	"time"
)

// Registry creates metrics in a concrete backend.
type Registry interface {
	NewCounter(name, help string, opts ...Option) Counter
	NewGauge(name, help string, opts ...Option) Gauge
	NewTimer(name, help string, opts ...Option) Timer

	NewLabeledCounter(name, help string, labels []string, opts ...Option) LabeledCounter
	NewLabeledGauge(name, help string, labels []string, opts ...Option) LabeledGauge
	NewLabeledTimer(name, help string, labels []string, opts ...Option) LabeledTimer
}

// Option is a backend specific option. A Registry ignores options it does
// not understand.
type Option interface{}

// Counter only goes up.
type Counter interface {
	// Inc adds the sum of vs, or 1 if vs is empty. The sum must be positive.
	Inc(vs ...float64)
}

// Gauge can go up and down.
type Gauge interface {
	// Inc adds the sum of vs, or 1 if vs is empty.
	Inc(vs ...float64)
	// Dec subtracts the sum of vs, or 1 if vs is empty.
	Dec(vs ...float64)
	Set(float64)
}

// Timer observes durations in seconds.
type Timer interface {
	Update(time.Duration)
	UpdateSince(time.Time)
}

// LabeledCounter returns a Counter for a combination of label values, in the
// order of the label names used to create it.
type LabeledCounter interface {
	WithValues(vs ...string) Counter
}

// LabeledGauge returns a Gauge for a combination of label values.
type LabeledGauge interface {
	WithValues(vs ...string) Gauge
}

// LabeledTimer returns a Timer for a combination of label values.
type LabeledTimer interface {
	WithValues(vs ...string) Timer
}

var global struct {
	mu         sync.Mutex
	metrics    []metric
	registries []Registry
}

// Register adds r to the global registries and creates all metrics declared
// so far in it.
func Register(r Registry) {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.registries = append(global.registries, r)
	for _, m := range global.metrics {
		m.create(r)
	}
}

type metric interface {
	create(Registry)
}

type desc struct {
	name   string
	help   string
	labels []string
	opts   []Option
}

func declare[M metric](m M) M {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.metrics = append(global.metrics, m)
	for _, r := range global.registries {
		m.create(r)
	}
	return m
}

func NewCounter(name, help string, opts ...Option) Counter {
	return declare(&counter{fanout[Counter]{desc: desc{name: name, help: help, opts: opts}}})
}

func NewGauge(name, help string, opts ...Option) Gauge {
	return declare(&gauge{fanout[Gauge]{desc: desc{name: name, help: help, opts: opts}}})
}

func NewTimer(name, help string, opts ...Option) Timer {
	return declare(&timer{fanout[Timer]{desc: desc{name: name, help: help, opts: opts}}})
}

func NewLabeledCounter(name, help string, labels []string, opts ...Option) LabeledCounter {
	return declare(&labeledCounter{fanout[LabeledCounter]{desc: desc{name: name, help: help, labels: labels, opts: opts}}})
}

func NewLabeledGauge(name, help string, labels []string, opts ...Option) LabeledGauge {
	return declare(&labeledGauge{fanout[LabeledGauge]{desc: desc{name: name, help: help, labels: labels, opts: opts}}})
}

func NewLabeledTimer(name, help string, labels []string, opts ...Option) LabeledTimer {
	return declare(&labeledTimer{fanout[LabeledTimer]{desc: desc{name: name, help: help, labels: labels, opts: opts}}})
}

// fanout forwards every observation to the same metric in all registries.
type fanout[T any] struct {
	desc
	targets []T
}

func (f *fanout[T]) each(fn func(T)) {
	for _, t := range f.targets {
		fn(t)
	}
}

type counter struct{ fanout[Counter] }

func (c *counter) create(r Registry) {
	c.targets = append(c.targets, r.NewCounter(c.name, c.help, c.opts...))
}

func (c *counter) Inc(vs ...float64) { c.each(func(m Counter) { m.Inc(vs...) }) }

type gauge struct{ fanout[Gauge] }

func (g *gauge) create(r Registry) {
	g.targets = append(g.targets, r.NewGauge(g.name, g.help, g.opts...))
}

func (g *gauge) Inc(vs ...float64) { g.each(func(m Gauge) { m.Inc(vs...) }) }
func (g *gauge) Dec(vs ...float64) { g.each(func(m Gauge) { m.Dec(vs...) }) }
func (g *gauge) Set(v float64) { g.each(func(m Gauge) { m.Set(v) }) }

type timer struct{ fanout[Timer] }

func (t *timer) create(r Registry) {
	t.targets = append(t.targets, r.NewTimer(t.name, t.help, t.opts...))
}

func (t *timer) Update(d time.Duration) { t.each(func(m Timer) { m.Update(d) }) }
func (t *timer) UpdateSince(s time.Time) { t.Update(time.Since(s)) }

type labeledCounter struct{ fanout[LabeledCounter] }

func (c *labeledCounter) create(r Registry) {
	c.targets = append(c.targets, r.NewLabeledCounter(c.name, c.help, c.labels, c.opts...))
}

func (c *labeledCounter) WithValues(vs ...string) Counter {
	out := &counter{fanout[Counter]{desc: c.desc}}
	c.each(func(m LabeledCounter) { out.targets = append(out.targets, m.WithValues(vs...)) })
	return out
}

type labeledGauge struct{ fanout[LabeledGauge] }

func (g *labeledGauge) create(r Registry) {
	g.targets = append(g.targets, r.NewLabeledGauge(g.name, g.help, g.labels, g.opts...))
}

func (g *labeledGauge) WithValues(vs ...string) Gauge {
	out := &gauge{fanout[Gauge]{desc: g.desc}}
	g.each(func(m LabeledGauge) { out.targets = append(out.targets, m.WithValues(vs...)) })
	return out
}

type labeledTimer struct{ fanout[LabeledTimer] }

func (t *labeledTimer) create(r Registry) {
	t.targets = append(t.targets, r.NewLabeledTimer(t.name, t.help, t.labels, t.opts...))
}

func (t *labeledTimer) WithValues(vs ...string) Timer {
	out := &timer{fanout[Timer]{desc: t.desc}}
	t.each(func(m LabeledTimer) { out.targets = append(out.targets, m.WithValues(vs...)) })
	return out
}
