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

// Package graph implements the dependency graph between producers. An edge
// (source, target) means target consumes the output of source.
package graph

import (
	"slices"
	"sort"
	"sync"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

var (
	ErrEdgeExists    = cerrors.New("edge already exists")
	ErrNodeNotFound  = cerrors.New("node not found")
	ErrCycleDetected = cerrors.New("cycle detected")
)

// Edge is a directed dependency, Target depends on Source.
type Edge struct {
	Source string
	Target string
}

// Graph is a directed graph over string keys. It is safe for concurrent use,
// mutations take an exclusive lock and invalidate the cached cycle check.
type Graph struct {
	mu  sync.RWMutex
	out map[string]map[string]struct{}
	in  map[string]map[string]struct{}

	// cycle caches the result of FindCycle, valid while cycleValid is true.
	cycle      []string
	cycleValid bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		out: make(map[string]map[string]struct{}),
		in:  make(map[string]map[string]struct{}),
	}
}

// AddNode creates the node if it does not exist yet. It returns true if the
// node was created.
func (g *Graph) AddNode(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.out[key]; ok {
		return false
	}
	g.out[key] = make(map[string]struct{})
	g.in[key] = make(map[string]struct{})
	g.invalidate()
	return true
}

// AddEdge inserts the directed edge source->target. Both nodes have to exist
// already. Inserting an edge that is already present fails with
// ErrEdgeExists and leaves the graph unchanged.
func (g *Graph) AddEdge(source, target string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	targets, ok := g.out[source]
	if !ok {
		return cerrors.Errorf("source %q: %w", source, ErrNodeNotFound)
	}
	if _, ok := g.out[target]; !ok {
		return cerrors.Errorf("target %q: %w", target, ErrNodeNotFound)
	}
	if _, ok := targets[target]; ok {
		return cerrors.Errorf("%q -> %q: %w", source, target, ErrEdgeExists)
	}
	targets[target] = struct{}{}
	g.in[target][source] = struct{}{}
	g.invalidate()
	return nil
}

// RemoveEdge deletes the edge source->target, it returns false if there was no
// such edge.
func (g *Graph) RemoveEdge(source, target string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.out[source][target]; !ok {
		return false
	}
	delete(g.out[source], target)
	delete(g.in[target], source)
	g.invalidate()
	return true
}

// RemoveNode deletes the node together with all incident edges.
func (g *Graph) RemoveNode(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.out[key]; !ok {
		return cerrors.Errorf("%q: %w", key, ErrNodeNotFound)
	}
	for t := range g.out[key] {
		delete(g.in[t], key)
	}
	for s := range g.in[key] {
		delete(g.out[s], key)
	}
	delete(g.out, key)
	delete(g.in, key)
	g.invalidate()
	return nil
}

func (g *Graph) HasNode(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.out[key]
	return ok
}

func (g *Graph) HasEdge(source, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.out[source][target]
	return ok
}

// Neighbors returns the sorted targets of all edges leaving key, i.e. the
// nodes depending on key.
func (g *Graph) Neighbors(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.out[key])
}

// Dependents is an alias of Neighbors that reads better at call sites
// concerned with deployment.
func (g *Graph) Dependents(key string) []string {
	return g.Neighbors(key)
}

// Dependencies returns the sorted sources of all edges entering key, i.e. the
// nodes key depends on.
func (g *Graph) Dependencies(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.in[key])
}

// Nodes returns all node keys, sorted.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.out)
}

// Edges returns all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []Edge
	for _, s := range sortedKeys(g.out) {
		for _, t := range sortedKeys(g.out[s]) {
			edges = append(edges, Edge{Source: s, Target: t})
		}
	}
	return edges
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.out)
}

// AffectedByRemoval returns key and every node that transitively depends on
// it, sorted. These are the nodes that stop receiving data if key goes away.
func (g *Graph) AffectedByRemoval(key string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.out[key]; !ok {
		return nil, cerrors.Errorf("%q: %w", key, ErrNodeNotFound)
	}
	visited := map[string]struct{}{key: {}}
	queue := []string{key}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for t := range g.out[n] {
			if _, ok := visited[t]; !ok {
				visited[t] = struct{}{}
				queue = append(queue, t)
			}
		}
	}
	return sortedKeys(visited), nil
}

// HasCycle reports whether the graph contains a directed cycle.
func (g *Graph) HasCycle() bool {
	return len(g.FindCycle()) > 0
}

// FindCycle returns a directed cycle as a path whose first node is repeated
// at the end, e.g. [a b a], or nil if the graph is acyclic. Nodes are visited
// in sorted order, so the reported cycle is deterministic. The result is
// cached until the next mutation.
func (g *Graph) FindCycle() []string {
	g.mu.RLock()
	if g.cycleValid {
		c := slices.Clone(g.cycle)
		g.mu.RUnlock()
		return c
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.cachedCycle())
}

// cachedCycle returns the cached cycle, running the search if the cache is
// invalid. The caller must hold the write lock.
func (g *Graph) cachedCycle() []string {
	if !g.cycleValid {
		g.cycle = g.findCycle()
		g.cycleValid = true
	}
	return g.cycle
}

const (
	white = iota // not visited
	grey         // on the current DFS path
	black        // finished
)

// findCycle runs a three-colour depth-first search, the caller must hold the
// lock.
func (g *Graph) findCycle() []string {
	color := make(map[string]int, len(g.out))
	parent := make(map[string]string, len(g.out))

	var visit func(n string) []string
	visit = func(n string) []string {
		color[n] = grey
		for _, t := range sortedKeys(g.out[n]) {
			switch color[t] {
			case grey:
				// back edge n->t closes a cycle t ... n t
				path := []string{t}
				for cur := n; cur != t; cur = parent[cur] {
					path = append(path, cur)
				}
				slices.Reverse(path[1:])
				return append(path, t)
			case white:
				parent[t] = n
				if c := visit(t); c != nil {
					return c
				}
			}
		}
		color[n] = black
		return nil
	}

	for _, n := range sortedKeys(g.out) {
		if color[n] == white {
			if c := visit(n); c != nil {
				return c
			}
		}
	}
	return nil
}

// TopologicalOrder returns all nodes ordered so that every node comes after
// the nodes it depends on. Ties are broken by key, so the order is stable for
// the same graph. A cyclic graph fails with ErrCycleDetected.
func (g *Graph) TopologicalOrder() ([]string, error) {
	// the cycle check and the ordering have to see the same graph
	g.mu.Lock()
	defer g.mu.Unlock()

	if cycle := g.cachedCycle(); cycle != nil {
		return nil, &CycleError{Cycle: slices.Clone(cycle)}
	}

	indegree := make(map[string]int, len(g.out))
	for n := range g.out {
		indegree[n] = len(g.in[n])
	}

	var ready []string
	for n, d := range indegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.out))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, t := range sortedKeys(g.out[n]) {
			indegree[t]--
			if indegree[t] == 0 {
				// keep ready sorted so ties resolve by key
				i := sort.SearchStrings(ready, t)
				ready = slices.Insert(ready, i, t)
			}
		}
	}
	return order, nil
}

// invalidate drops the cached cycle check, the caller must hold the lock.
func (g *Graph) invalidate() {
	g.cycle = nil
	g.cycleValid = false
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
