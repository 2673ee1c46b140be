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

package cerrors_test

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/matryer/is"
)

type secretError struct{}

func (s *secretError) Error() string {
	return "secret error message"
}

type unwrapPanicError struct{}

func (w *unwrapPanicError) Error() string {
	return "calling Unwrap() will panic"
}

func (w *unwrapPanicError) Unwrap() error {
	panic("you didn't expect this to happen")
}

func TestErrorf_ContainsCaller(t *testing.T) {
	is := is.New(t)

	err := cerrors.Errorf("caused by: %w", cerrors.New("foobar"))
	s := fmt.Sprintf("%+v", err)
	is.True(strings.Contains(s, "cerrors_test.TestErrorf_ContainsCaller"))
	is.True(strings.Contains(s, "foobar"))
}

func TestGetStackTrace(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		is := is.New(t)
		res := cerrors.GetStackTrace(nil)
		is.True(res == nil || len(res.([]cerrors.Frame)) == 0)
	})
	t.Run("third party error", func(t *testing.T) {
		is := is.New(t)
		res := cerrors.GetStackTrace(&secretError{})
		is.True(res == nil || len(res.([]cerrors.Frame)) == 0)
	})
	t.Run("handle panics", func(t *testing.T) {
		is := is.New(t)
		res := cerrors.GetStackTrace(cerrors.Errorf("caused by: %w", &unwrapPanicError{}))
		is.True(res == nil || len(res.([]cerrors.Frame)) == 0)
	})
	t.Run("wrapped frames", func(t *testing.T) {
		is := is.New(t)

		_, file, line, _ := runtime.Caller(0)
		err := cerrors.Errorf("outer: %w", cerrors.Errorf("inner: %w", &secretError{}))

		frames, ok := cerrors.GetStackTrace(err).([]cerrors.Frame)
		is.True(ok)
		is.Equal(len(frames), 2)
		for _, f := range frames {
			is.Equal(f.File, file)
			is.Equal(f.Line, line+1)
			is.True(strings.HasSuffix(f.Func, "TestGetStackTrace.func4"))
		}
	})
}

func TestLogOrReplace(t *testing.T) {
	errFoo := cerrors.New("foo")
	errBar := cerrors.New("bar")

	testCases := map[string]struct {
		oldErr        error
		newErr        error
		wantErr       error
		wantLogCalled bool
	}{
		"both nil": {
			oldErr:        nil,
			newErr:        nil,
			wantErr:       nil,
			wantLogCalled: false,
		},
		"oldErr exists, newErr nil": {
			oldErr:        errFoo,
			newErr:        nil,
			wantErr:       errFoo,
			wantLogCalled: false,
		},
		"oldErr nil, newErr exists": {
			oldErr:        nil,
			newErr:        errFoo,
			wantErr:       errFoo,
			wantLogCalled: false,
		},
		"both exist": {
			oldErr:        errFoo,
			newErr:        errBar,
			wantErr:       errFoo,
			wantLogCalled: true,
		},
	}

	for testName, tc := range testCases {
		t.Run(testName, func(t *testing.T) {
			is := is.New(t)

			logCalled := false
			gotErr := cerrors.LogOrReplace(tc.oldErr, tc.newErr, func() {
				logCalled = true
			})
			is.Equal(tc.wantErr, gotErr)
			is.Equal(tc.wantLogCalled, logCalled)
		})
	}
}

func TestForEach(t *testing.T) {
	is := is.New(t)

	errFoo := cerrors.New("foo")
	errBar := cerrors.New("bar")
	errBaz := cerrors.New("baz")

	multiErr := cerrors.Join(errFoo, errBar)
	multiErr = cerrors.Join(multiErr, errBaz)

	want := []error{errFoo, errBar, errBaz}
	i := 0
	cerrors.ForEach(multiErr, func(err error) {
		is.Equal(want[i], err)
		i++
	})
	is.Equal(len(want), i)

	cerrors.ForEach(nil, func(error) { t.Fatal("unexpected call") })
}
