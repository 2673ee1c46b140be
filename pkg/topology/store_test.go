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
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/gsnio/gsn/pkg/foundation/database/inmemory"
	"github.com/gsnio/gsn/pkg/foundation/database/sqlite"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

var declCmpOpts = []cmp.Option{
	cmp.Comparer(func(a, b record.Schema) bool { return a.Equal(b) }),
	cmpopts.EquateEmpty(),
}

func testStore(t *testing.T, db database.DB) {
	is := is.New(t)
	ctx := context.Background()
	s := NewStore(db)

	want := Declaration{
		Name:      "station-a",
		Wrapper:   "mock",
		Settings:  map[string]string{"rate": "100ms"},
		Schema:    record.MustSchema(record.Field{Name: "data", Type: record.TypeInteger}),
		DependsOn: []string{"gateway"},
	}
	is.NoErr(s.Set(ctx, want))

	got, err := s.Get(ctx, "station-a")
	is.NoErr(err)
	if diff := cmp.Diff(want, got, declCmpOpts...); diff != "" {
		t.Errorf("mismatch (-want +got): %s", diff)
	}

	all, err := s.GetAll(ctx)
	is.NoErr(err)
	is.Equal(len(all), 1)

	is.NoErr(s.Delete(ctx, "station-a"))
	_, err = s.Get(ctx, "station-a")
	is.True(cerrors.Is(err, database.ErrKeyNotExist))

	is.True(cerrors.Is(s.Set(ctx, Declaration{}), cerrors.ErrEmptyID))
	is.True(cerrors.Is(s.Delete(ctx, ""), cerrors.ErrEmptyID))
}

func testStoreReplace(t *testing.T, db database.DB) {
	is := is.New(t)
	ctx := context.Background()
	s := NewStore(db)

	is.NoErr(s.Set(ctx, Declaration{Name: "old", Wrapper: "mock"}))

	topo, err := NewBuilder(log.Nop()).Build(ctx, []Declaration{
		{Name: "station-a", Wrapper: "mock"},
		{Name: "avg", Wrapper: "mock", DependsOn: []string{"station-a"}},
	})
	is.NoErr(err)
	is.NoErr(s.Replace(ctx, topo))

	all, err := s.GetAll(ctx)
	is.NoErr(err)
	want := map[string]Declaration{
		"station-a": {Name: "station-a", Wrapper: "mock"},
		"avg":       {Name: "avg", Wrapper: "mock", DependsOn: []string{"station-a"}},
	}
	if diff := cmp.Diff(want, all, declCmpOpts...); diff != "" {
		t.Errorf("mismatch (-want +got): %s", diff)
	}
}

func TestStore_InMemory(t *testing.T) {
	t.Run("crud", func(t *testing.T) { testStore(t, &inmemory.DB{}) })
	t.Run("replace", func(t *testing.T) { testStoreReplace(t, &inmemory.DB{}) })
}

func TestStore_SQLite(t *testing.T) {
	for name, f := range map[string]func(*testing.T, database.DB){
		"crud":    testStore,
		"replace": testStoreReplace,
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			db, err := sqlite.New(context.Background(), zerolog.Nop(), t.TempDir(), "gsn_kv")
			is.NoErr(err)
			t.Cleanup(func() { _ = db.Close() })
			f(t, db)
		})
	}
}
