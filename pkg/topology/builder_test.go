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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/graph"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/matryer/is"
)

func dependsOn(name string, deps ...string) Declaration {
	return Declaration{Name: name, DependsOn: deps}
}

func TestBuilder_Scenario(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := NewBuilder(log.Test(t))

	// A->B, B->C, A->C
	is.NoErr(b.Apply(ctx, dependsOn("B", "A")))
	is.NoErr(b.Apply(ctx, dependsOn("C", "B")))
	is.NoErr(b.Apply(ctx, dependsOn("C", "A")))

	wantEdges := []graph.Edge{
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C"},
		{Source: "B", Target: "C"},
	}
	if diff := cmp.Diff(wantEdges, b.Graph().Edges()); diff != "" {
		t.Fatalf("mismatch (-want +got): %s", diff)
	}

	// re-declaring A->B fails and leaves the graph unchanged
	err := b.Apply(ctx, dependsOn("B", "A"))
	is.True(cerrors.Is(err, graph.ErrEdgeExists))
	var cerr *ConfigError
	is.True(cerrors.As(err, &cerr))
	is.Equal(cerr.Declaration, "B")

	if diff := cmp.Diff(wantEdges, b.Graph().Edges()); diff != "" {
		t.Fatalf("mismatch (-want +got): %s", diff)
	}
	is.Equal(b.Graph().Nodes(), []string{"A", "B", "C"})
	is.NoErr(b.Check())
}

func TestBuilder_ApplyIsAtomic(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := NewBuilder(log.Nop())

	is.NoErr(b.Apply(ctx, dependsOn("C", "B")))

	// X and the edge X->C are added before B->C fails, both are removed
	err := b.Apply(ctx, dependsOn("C", "X", "B"))
	is.True(cerrors.Is(err, graph.ErrEdgeExists))
	is.Equal(b.Graph().Nodes(), []string{"B", "C"})
	is.Equal(b.Graph().Edges(), []graph.Edge{{Source: "B", Target: "C"}})
	is.True(!b.Graph().HasNode("X"))
}

func TestBuilder_Cycle(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := NewBuilder(log.Nop())

	// A->B, B->A
	is.NoErr(b.Apply(ctx, dependsOn("B", "A")))
	is.NoErr(b.Apply(ctx, dependsOn("A", "B")))
	is.True(b.Graph().HasEdge("A", "B"))
	is.True(b.Graph().HasEdge("B", "A"))
	is.Equal(len(b.Graph().Edges()), 2)

	err := b.Check()
	is.True(cerrors.Is(err, graph.ErrCycleDetected))
	var cycleErr *graph.CycleError
	is.True(cerrors.As(err, &cycleErr))
	is.Equal(cycleErr.Cycle, []string{"A", "B", "A"})
}

func TestBuilder_BuildRejectsCycle(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	topo, err := NewBuilder(log.Nop()).Build(ctx, []Declaration{
		dependsOn("B", "A"),
		dependsOn("C", "B"),
		dependsOn("A", "C"),
	})
	is.True(cerrors.Is(err, graph.ErrCycleDetected))
	is.Equal(topo, nil)
}

func TestBuilder_BuildCollectsErrors(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	_, err := NewBuilder(log.Nop()).Build(ctx, []Declaration{
		dependsOn("B", "A"),
		dependsOn("B", "A"),
		dependsOn(""),
		dependsOn("C", "C"),
		dependsOn("D", "A", "A"),
	})
	is.True(err != nil)
	is.True(cerrors.Is(err, graph.ErrEdgeExists))
	is.True(cerrors.Is(err, cerrors.ErrEmptyID))
	is.True(cerrors.Is(err, ErrSelfDependency))
	is.True(cerrors.Is(err, ErrDuplicateDep))
}

func TestBuilder_Build(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	schema := record.MustSchema(record.Field{Name: "data", Type: record.TypeInteger})
	topo, err := NewBuilder(log.Nop()).Build(ctx, []Declaration{
		{Name: "avg", Wrapper: "mock", Schema: schema, DependsOn: []string{"station-a", "station-b"}},
		{Name: "station-b", Wrapper: "mock", Settings: map[string]string{"rate": "10ms"}},
		{Name: "station-a", Wrapper: "mock"},
		{Name: "alert", DependsOn: []string{"avg"}},
	})
	is.NoErr(err)

	is.Equal(topo.Order(), []string{"station-a", "station-b", "avg", "alert"})
	is.Equal(topo.Dependencies("avg"), []string{"station-a", "station-b"})

	d, ok := topo.Declaration("station-b")
	is.True(ok)
	is.Equal(d.Settings["rate"], "10ms")
	is.True(d.Deployable())

	d, ok = topo.Declaration("alert")
	is.True(ok)
	is.True(!d.Deployable())

	names := make([]string, 0)
	for _, d := range topo.Declarations() {
		names = append(names, d.Name)
	}
	is.Equal(names, []string{"station-a", "station-b", "avg", "alert"})

	affected, err := topo.Affected("station-b")
	is.NoErr(err)
	is.Equal(affected, []string{"station-b", "avg", "alert"})
}

func TestBuilder_Redeclaration(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := NewBuilder(log.Nop())

	intSchema := record.MustSchema(record.Field{Name: "data", Type: record.TypeInteger})
	strSchema := record.MustSchema(record.Field{Name: "data", Type: record.TypeVarchar})

	// a dependency only declaration followed by the full declaration
	is.NoErr(b.Apply(ctx, dependsOn("B", "A")))
	is.NoErr(b.Apply(ctx, Declaration{Name: "B", Wrapper: "mock", Schema: intSchema, DependsOn: []string{"Z"}}))

	err := b.Apply(ctx, Declaration{Name: "B", Schema: strSchema})
	is.True(cerrors.Is(err, ErrSchemaConflict))

	err = b.Apply(ctx, Declaration{Name: "B", Wrapper: "replay"})
	is.True(cerrors.Is(err, ErrWrapperConflict))

	topo, err := b.Build(ctx, nil)
	is.NoErr(err)
	d, _ := topo.Declaration("B")
	is.Equal(d.Wrapper, "mock")
	is.True(d.Schema.Equal(intSchema))
	is.Equal(d.DependsOn, []string{"A", "Z"})
}

func TestConfigError(t *testing.T) {
	is := is.New(t)
	err := &ConfigError{Declaration: "B", Err: graph.ErrEdgeExists}
	is.Equal(err.Error(), `invalid declaration "B": edge already exists`)
}
