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

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

// Registry maps wrapper kinds to the factories creating them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for kind. Registering the same kind twice fails.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" {
		return cerrors.Errorf("could not register wrapper: %w", cerrors.ErrEmptyID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[kind]; ok {
		return cerrors.Errorf("%q: %w", kind, ErrWrapperRegistered)
	}
	r.factories[kind] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind string, f Factory) {
	if err := r.Register(kind, f); err != nil {
		panic(err)
	}
}

// Create creates a new wrapper of kind.
func (r *Registry) Create(kind string, cfg Config) (Wrapper, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, cerrors.Errorf("%q: %w", kind, ErrWrapperNotFound)
	}

	w, err := f(cfg)
	if err != nil {
		return nil, cerrors.Errorf("could not create wrapper %q for producer %q: %w", kind, cfg.Name, err)
	}
	return w, nil
}

// Has reports whether a factory is registered for kind.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns all registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
