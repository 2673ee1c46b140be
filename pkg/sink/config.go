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

package sink

import (
	"strings"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

// Policy decides what Enqueue does when the sink is full.
type Policy int

const (
	// PolicyDropOldest evicts the oldest record to make room. Enqueue never
	// blocks and never fails because of a full sink.
	PolicyDropOldest Policy = iota
	// PolicyReject fails Enqueue with ErrSinkFull.
	PolicyReject
	// PolicyBlock waits up to Config.BlockTimeout for a reader to make room
	// and fails with ErrSinkFull afterwards.
	PolicyBlock
)

var policyNames = map[Policy]string{
	PolicyDropOldest: "drop-oldest",
	PolicyReject:     "reject",
	PolicyBlock:      "block",
}

func (p Policy) String() string {
	if n, ok := policyNames[p]; ok {
		return n
	}
	return "unknown"
}

// ParsePolicy parses the names returned by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	for p, n := range policyNames {
		if strings.EqualFold(n, s) {
			return p, nil
		}
	}
	return 0, cerrors.Errorf("unknown sink policy %q", s)
}

// Config configures a Sink.
type Config struct {
	// Capacity is the maximum number of queued records, 0 means unbounded.
	Capacity int
	Policy   Policy
	// BlockTimeout bounds the wait of Enqueue under PolicyBlock.
	BlockTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Capacity:     1024,
		Policy:       PolicyDropOldest,
		BlockTimeout: time.Second,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Capacity < 0 {
		errs = append(errs, cerrors.Errorf("capacity must be 0 or positive, got %d", c.Capacity))
	}
	if _, ok := policyNames[c.Policy]; !ok {
		errs = append(errs, cerrors.Errorf("unknown policy %d", int(c.Policy)))
	}
	if c.Policy == PolicyBlock && c.BlockTimeout <= 0 {
		errs = append(errs, cerrors.New("block timeout must be positive when policy is block"))
	}
	return cerrors.Join(errs...)
}
