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

package rollback

import (
	"testing"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/matryer/is"
)

func TestR_ExecuteReverseOrder(t *testing.T) {
	is := is.New(t)

	var got []int
	var r R
	for i := 0; i < 3; i++ {
		i := i
		r.AppendPure(func() { got = append(got, i) })
	}

	is.NoErr(r.Execute())
	is.Equal(got, []int{2, 1, 0})

	// second execution is a noop
	is.NoErr(r.Execute())
	is.Equal(got, []int{2, 1, 0})
}

func TestR_Skip(t *testing.T) {
	is := is.New(t)

	calls := 0
	var r R
	r.AppendPure(func() { calls++ })
	r.Skip()
	r.AppendPure(func() { calls += 10 })

	is.NoErr(r.Execute())
	is.Equal(calls, 10)
}

func TestR_ExecuteFailure(t *testing.T) {
	is := is.New(t)

	wantErr := cerrors.New("node vanished")
	var got []string
	var r R
	r.AppendPure(func() { got = append(got, "first") })
	r.Append(func() error { return wantErr })
	r.AppendPure(func() { got = append(got, "third") })

	err := r.Execute()
	is.True(cerrors.Is(err, wantErr))
	is.Equal(got, []string{"third"})

	// the failing function is retried on the next call
	err = r.Execute()
	is.True(cerrors.Is(err, wantErr))
	is.Equal(got, []string{"third"})
}

func TestR_MustExecutePanics(t *testing.T) {
	is := is.New(t)

	var r R
	r.Append(func() error { return cerrors.New("boom") })

	defer func() {
		is.True(recover() != nil)
	}()
	r.MustExecute()
}
