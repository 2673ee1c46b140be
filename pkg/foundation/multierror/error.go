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

// Package multierror collects independent failures, for example one per
// rejected topology declaration, into a single error value.
package multierror

import "strings"

// Error holds a list of errors. It supports errors.Is and errors.As through
// Unwrap.
type Error struct {
	errs []error
}

// Error joins all messages with new lines.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Errors returns the collected errors.
func (e *Error) Errors() []error {
	return e.errs
}

func (e *Error) Unwrap() []error {
	return e.errs
}

// Append adds errs to err and returns the result. Nil errors are ignored. A
// single non-nil error is returned as is, nil is returned if all errors are
// nil, in every other case the result is an *Error.
func Append(err error, errs ...error) error {
	for _, next := range errs {
		switch {
		case next == nil:
		case err == nil:
			err = next
		default:
			if me, ok := err.(*Error); ok {
				me.errs = append(me.errs, next)
			} else {
				err = &Error{errs: []error{err, next}}
			}
		}
	}
	return err
}
