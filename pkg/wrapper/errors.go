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
	"fmt"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

var (
	// ErrInitializationFailure is returned when a wrapper could not be
	// initialized. The producer never runs.
	ErrInitializationFailure = cerrors.New("initialization failure")
	// ErrSourceFailure is returned when the run loop of a wrapper ended
	// because of an unrecoverable source error.
	ErrSourceFailure = cerrors.New("source failure")
	// ErrInstanceFinalized is returned by Publish after Finalize was called.
	ErrInstanceFinalized = cerrors.New("producer instance is finalized")
	// ErrInvalidStatus is returned when a lifecycle method is called in the
	// wrong status.
	ErrInvalidStatus = cerrors.New("invalid status")

	ErrWrapperNotFound     = cerrors.New("wrapper not found")
	ErrWrapperRegistered   = cerrors.New("wrapper already registered")
	ErrCounterUnderflow    = cerrors.New("active instance counter would drop below zero")
	ErrInvalidOutputFormat = cerrors.New("wrapper output format does not match the declared schema")
)

// LifecycleError describes a failed lifecycle step of a producer. It matches
// both Kind (ErrInitializationFailure or ErrSourceFailure) and the cause.
type LifecycleError struct {
	Producer string
	Kind     error
	Err      error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("producer %q: %v: %v", e.Producer, e.Kind, e.Err)
}

func (e *LifecycleError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
