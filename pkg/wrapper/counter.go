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
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/metrics/measure"
)

// Counter counts active producer instances per wrapper kind. It is owned by
// the supervisor and changed only through instance lifecycle transitions.
// The zero value is ready to use.
type Counter struct {
	mu     sync.RWMutex
	counts map[string]*atomic.Int64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) get(kind string) *atomic.Int64 {
	c.mu.RLock()
	v, ok := c.counts[kind]
	c.mu.RUnlock()
	if ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok = c.counts[kind]; ok {
		return v
	}
	if c.counts == nil {
		c.counts = make(map[string]*atomic.Int64)
	}
	v = &atomic.Int64{}
	c.counts[kind] = v
	return v
}

// Inc increments the counter of kind and returns the new value.
func (c *Counter) Inc(kind string) int64 {
	n := c.get(kind).Add(1)
	measure.ActiveInstancesGauge.WithValues(kind).Inc()
	return n
}

// Dec decrements the counter of kind and returns the new value. It refuses
// to go below zero.
func (c *Counter) Dec(kind string) (int64, error) {
	v := c.get(kind)
	for {
		n := v.Load()
		if n <= 0 {
			return n, cerrors.Errorf("wrapper %q: %w", kind, ErrCounterUnderflow)
		}
		if v.CompareAndSwap(n, n-1) {
			measure.ActiveInstancesGauge.WithValues(kind).Dec()
			return n - 1, nil
		}
	}
}

// Get returns the number of active instances of kind.
func (c *Counter) Get(kind string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.counts[kind]; ok {
		return v.Load()
	}
	return 0
}

// All returns a snapshot of all counters.
func (c *Counter) All() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v.Load()
	}
	return out
}

// Kinds returns the wrapper kinds that were counted at least once, sorted.
func (c *Counter) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kinds := make([]string, 0, len(c.counts))
	for k := range c.counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
