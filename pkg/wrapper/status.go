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

// Status is the lifecycle status of a producer instance.
type Status int

const (
	StatusCreated Status = iota
	StatusInitialized
	StatusRunning
	StatusStopped
	StatusFailed
	StatusFinalized
)

var statusNames = [...]string{
	StatusCreated:     "Created",
	StatusInitialized: "Initialized",
	StatusRunning:     "Running",
	StatusStopped:     "Stopped",
	StatusFailed:      "Failed",
	StatusFinalized:   "Finalized",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Status(unknown)"
	}
	return statusNames[s]
}

// Terminal reports whether the instance will not produce records anymore.
func (s Status) Terminal() bool {
	return s == StatusStopped || s == StatusFailed || s == StatusFinalized
}
