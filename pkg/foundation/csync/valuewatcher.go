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

package csync

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ValueWatcher stores a value and lets goroutines block until the value
// satisfies a condition. Every value passed to Set is delivered to every
// active watcher, so a watcher never misses an intermediate transition. The
// zero value is ready to use.
type ValueWatcher[T any] struct {
	mu        sync.Mutex
	val       T
	listeners map[string]chan T
}

// ValueWatcherFunc is the condition checked by Watch.
type ValueWatcherFunc[T any] func(val T) bool

// WatchValues returns a condition that is met when the value equals any of
// the wanted values.
func WatchValues[T comparable](want ...T) ValueWatcherFunc[T] {
	if len(want) == 0 {
		panic("csync: WatchValues needs at least one value")
	}
	return func(val T) bool {
		for _, w := range want {
			if val == w {
				return true
			}
		}
		return false
	}
}

// Set stores val and hands it to all watchers. It blocks until every watcher
// has received the value.
func (w *ValueWatcher[T]) Set(val T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.val = val
	for _, l := range w.listeners {
		l <- val
	}
}

// Get returns the current value.
func (w *ValueWatcher[T]) Get() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.val
}

// Watch calls f with the current value and then with every new value until f
// returns true or ctx is done. It returns the value that satisfied f.
func (w *ValueWatcher[T]) Watch(ctx context.Context, f ValueWatcherFunc[T]) (T, error) {
	w.mu.Lock()
	if f(w.val) {
		val := w.val
		w.mu.Unlock()
		return val, nil
	}
	id, l := w.subscribe()
	w.mu.Unlock()
	defer w.unsubscribe(id, l)

	for {
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case val := <-l:
			if f(val) {
				return val, nil
			}
		}
	}
}

// subscribe registers a new listener, the caller must hold the lock.
func (w *ValueWatcher[T]) subscribe() (string, chan T) {
	if w.listeners == nil {
		w.listeners = make(map[string]chan T)
	}
	id := uuid.NewString()
	l := make(chan T)
	w.listeners[id] = l
	return id, l
}

func (w *ValueWatcher[T]) unsubscribe(id string, l chan T) {
	// a concurrent Set may be blocked sending to l while we wait for the lock
	go func() {
		for range l { //nolint:revive // drain
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.listeners, id)
	close(l)
}
