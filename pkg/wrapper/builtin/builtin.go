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

// Package builtin contains the reference wrappers shipped with GSN.
package builtin

import (
	"context"
	"strconv"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/wrapper"
)

// DefaultFactories contains the factories of all built-in wrappers. The key
// of the map is the wrapper kind used in topology declarations.
var DefaultFactories = map[string]wrapper.Factory{
	MockKind:   NewMock,
	ReplayKind: NewReplay,
	MemoryKind: NewMemory,
}

// DefaultRegistry returns a registry containing all built-in wrappers.
func DefaultRegistry() *wrapper.Registry {
	r := wrapper.NewRegistry()
	for kind, f := range DefaultFactories {
		r.MustRegister(kind, f)
	}
	return r
}

// durationSetting parses a duration setting. Plain integers are interpreted
// as milliseconds.
func durationSetting(settings map[string]string, key string, def time.Duration) (time.Duration, error) {
	v, ok := settings[key]
	if !ok || v == "" {
		return def, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if ms < 0 {
			return 0, cerrors.Errorf("setting %q: negative duration %q", key, v)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, cerrors.Errorf("setting %q: %w", key, err)
	}
	if d < 0 {
		return 0, cerrors.Errorf("setting %q: negative duration %q", key, v)
	}
	return d, nil
}

// tick calls f every interval until ctx is done or f fails. If interval is 0
// it only waits for ctx.
func tick(ctx context.Context, interval time.Duration, f func() error) error {
	if interval == 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := f(); err != nil {
				return err
			}
		}
	}
}
