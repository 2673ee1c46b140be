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

// Package rollback records compensating actions while a multi-step mutation
// is in progress, so the mutation can be undone if a later step fails.
//
// Typical use:
//
//	var r rollback.R
//	defer r.MustExecute()
//
//	if err := g.AddEdge(a, b); err != nil {
//		return err
//	}
//	r.AppendPure(func() { g.RemoveEdge(a, b) })
//
//	r.Skip() // everything succeeded
//	return nil
package rollback

import "github.com/gsnio/gsn/pkg/foundation/cerrors"

// R is a stack of rollback functions. The zero value is ready to use.
type R struct {
	f []func() error
}

// Append pushes a rollback function that may fail.
func (r *R) Append(f func() error) {
	r.f = append(r.f, f)
}

// AppendPure pushes a rollback function that can not fail.
func (r *R) AppendPure(f func()) {
	r.f = append(r.f, func() error {
		f()
		return nil
	})
}

// Skip drops all rollback functions pushed so far.
func (r *R) Skip() {
	r.f = nil
}

// Execute pops and runs the rollback functions in reverse order. It stops at
// the first failing function and returns its error; functions that already
// ran are not run again on a subsequent call.
func (r *R) Execute() error {
	for len(r.f) > 0 {
		last := len(r.f) - 1
		if err := r.f[last](); err != nil {
			return cerrors.Errorf("rollback failed: %w", err)
		}
		r.f = r.f[:last]
	}
	return nil
}

// MustExecute runs Execute and panics on error, a failed rollback leaves
// state inconsistent.
func (r *R) MustExecute() {
	if err := r.Execute(); err != nil {
		panic(err)
	}
}
