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

package wrapper

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/matryer/is"
)

func TestCounter_IncDec(t *testing.T) {
	is := is.New(t)
	var c Counter

	is.Equal(c.Get("mock"), int64(0))
	is.Equal(c.Inc("mock"), int64(1))
	is.Equal(c.Inc("mock"), int64(2))
	is.Equal(c.Inc("replay"), int64(1))

	n, err := c.Dec("mock")
	is.NoErr(err)
	is.Equal(n, int64(1))

	want := map[string]int64{"mock": 1, "replay": 1}
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Errorf("mismatch (-want +got): %s", diff)
	}
	is.Equal(c.Kinds(), []string{"mock", "replay"})
}

func TestCounter_Underflow(t *testing.T) {
	is := is.New(t)
	c := NewCounter()

	_, err := c.Dec("mock")
	is.True(cerrors.Is(err, ErrCounterUnderflow))
	is.Equal(c.Get("mock"), int64(0))
}

func TestCounter_Concurrent(t *testing.T) {
	is := is.New(t)
	c := NewCounter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc("mock")
				if _, err := c.Dec("mock"); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()
	is.Equal(c.Get("mock"), int64(0))
}

func TestRegistry(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()

	var got Config
	f := func(cfg Config) (Wrapper, error) {
		got = cfg
		return nil, nil
	}
	is.NoErr(r.Register("mock", f))
	err := r.Register("mock", f)
	is.True(cerrors.Is(err, ErrWrapperRegistered))
	err = r.Register("", f)
	is.True(cerrors.Is(err, cerrors.ErrEmptyID))

	is.True(r.Has("mock"))
	is.Equal(r.Kinds(), []string{"mock"})

	_, err = r.Create("mock", Config{Name: "station-a"})
	is.NoErr(err)
	is.Equal(got.Name, "station-a")

	_, err = r.Create("unknown", Config{Name: "station-a"})
	is.True(cerrors.Is(err, ErrWrapperNotFound))
}

func TestRegistry_FactoryError(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()
	wantErr := cerrors.New("invalid setting")
	r.MustRegister("mock", func(Config) (Wrapper, error) { return nil, wantErr })

	_, err := r.Create("mock", Config{Name: "station-a"})
	is.True(cerrors.Is(err, wantErr))
}

func TestStatus_String(t *testing.T) {
	is := is.New(t)
	is.Equal(StatusRunning.String(), "Running")
	is.Equal(Status(42).String(), "Status(unknown)")
	is.True(StatusStopped.Terminal())
	is.True(!StatusRunning.Terminal())
}

func TestLifecycleError(t *testing.T) {
	is := is.New(t)
	cause := cerrors.New("boom")
	err := &LifecycleError{Producer: "a", Kind: ErrSourceFailure, Err: cause}
	is.Equal(err.Error(), `producer "a": source failure: boom`)
	is.True(cerrors.Is(err, ErrSourceFailure))
	is.True(cerrors.Is(err, cause))
}
