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

package topology

import (
	"context"
	"slices"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/foundation/metrics/measure"
	"github.com/gsnio/gsn/pkg/foundation/multierror"
	"github.com/gsnio/gsn/pkg/foundation/rollback"
	"github.com/gsnio/gsn/pkg/graph"
)

// Builder applies declarations to a dependency graph. It is not safe for
// concurrent use, topologies are built once at startup.
type Builder struct {
	logger log.CtxLogger
	graph  *graph.Graph
	decls  map[string]Declaration
}

func NewBuilder(logger log.CtxLogger) *Builder {
	return &Builder{
		logger: logger.WithComponent("topology.Builder"),
		graph:  graph.New(),
		decls:  make(map[string]Declaration),
	}
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *graph.Graph {
	return b.graph
}

// Apply adds the producer and its dependencies to the graph. The
// declaration is applied completely or not at all: if any edge already
// exists, every node and edge added by this call is removed again and a
// *ConfigError is returned.
func (b *Builder) Apply(ctx context.Context, d Declaration) (err error) {
	defer func() {
		if err != nil {
			err = &ConfigError{Declaration: d.Name, Err: err}
		}
	}()

	if err := d.Validate(); err != nil {
		return err
	}

	merged := d.clone()
	if prev, ok := b.decls[d.Name]; ok {
		merged, err = prev.merge(d)
		if err != nil {
			return err
		}
	}

	var r rollback.R
	defer r.MustExecute()

	if b.graph.AddNode(d.Name) {
		r.Append(func() error { return b.graph.RemoveNode(d.Name) })
	}
	for _, dep := range d.DependsOn {
		if b.graph.AddNode(dep) {
			r.Append(func() error { return b.graph.RemoveNode(dep) })
		}
		if err := b.graph.AddEdge(dep, d.Name); err != nil {
			b.logger.Warn(ctx).
				Err(err).
				Str(log.NodeField, d.Name).
				Str(log.DependencyField, dep).
				Msg("dependency rejected, rolling back declaration")
			return err
		}
		r.AppendPure(func() { b.graph.RemoveEdge(dep, d.Name) })
		b.logger.Trace(ctx).
			Str(log.NodeField, d.Name).
			Str(log.DependencyField, dep).
			Msg("dependency added")
	}

	b.decls[d.Name] = merged
	r.Skip()
	return nil
}

// Build applies all declarations and checks the resulting graph for cycles.
// It reports every invalid declaration, not just the first one. A cycle
// is always an error, a cyclic topology has no deployment order.
func (b *Builder) Build(ctx context.Context, decls []Declaration) (*Topology, error) {
	var errs error
	for _, d := range decls {
		if err := b.Apply(ctx, d); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := b.Check(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return nil, errs
	}

	order, err := b.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	measure.TopologyNodesGauge.Set(float64(b.graph.Len()))
	b.logger.Info(ctx).
		Int("nodes", b.graph.Len()).
		Int("edges", len(b.graph.Edges())).
		Msg("topology built")

	snapshot := make(map[string]Declaration, len(b.decls))
	for k, v := range b.decls {
		snapshot[k] = v.clone()
	}
	return &Topology{graph: b.graph, decls: snapshot, order: order}, nil
}

// Check returns a *graph.CycleError if the graph contains a cycle.
func (b *Builder) Check() error {
	if cycle := b.graph.FindCycle(); cycle != nil {
		return &graph.CycleError{Cycle: cycle}
	}
	return nil
}

// Topology is a validated, acyclic dependency graph together with the
// declarations it was built from.
type Topology struct {
	graph *graph.Graph
	decls map[string]Declaration
	order []string
}

func (t *Topology) Graph() *graph.Graph {
	return t.graph
}

// Order returns all nodes, dependencies before their dependents.
func (t *Topology) Order() []string {
	return slices.Clone(t.order)
}

// Declaration returns the declaration of a node. Nodes that were only
// referenced as dependencies have no declaration.
func (t *Topology) Declaration(name string) (Declaration, bool) {
	d, ok := t.decls[name]
	if !ok {
		return Declaration{}, false
	}
	return d.clone(), true
}

// Declarations returns all declarations in deployment order.
func (t *Topology) Declarations() []Declaration {
	out := make([]Declaration, 0, len(t.decls))
	for _, name := range t.order {
		if d, ok := t.decls[name]; ok {
			out = append(out, d.clone())
		}
	}
	return out
}

// Dependencies returns the nodes that name depends on.
func (t *Topology) Dependencies(name string) []string {
	return t.graph.Dependencies(name)
}

// Affected returns name and every node depending on it directly or
// indirectly, in deployment order.
func (t *Topology) Affected(name string) ([]string, error) {
	affected, err := t.graph.AffectedByRemoval(name)
	if err != nil {
		return nil, cerrors.Errorf("could not resolve affected nodes: %w", err)
	}
	set := make(map[string]bool, len(affected))
	for _, n := range affected {
		set[n] = true
	}
	out := make([]string, 0, len(affected))
	for _, n := range t.order {
		if set[n] {
			out = append(out, n)
		}
	}
	return out, nil
}
