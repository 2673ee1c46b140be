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

// Package inmemory provides a database.DB that keeps everything in memory.
// It is meant for tests and for runs that do not need to remember deployed
// topologies.
package inmemory

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/ctxutil"
	"github.com/gsnio/gsn/pkg/foundation/database"
)

// DB is an in-memory store. The zero value is ready to use.
type DB struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ database.DB = (*DB)(nil)

// Txn buffers writes until Commit. Commit fails if any key written in the
// transaction was changed by somebody else after the transaction started.
type Txn struct {
	db       *DB
	snapshot map[string][]byte
	writes   map[string][]byte
}

func (d *DB) NewTransaction(ctx context.Context, _ bool) (database.Transaction, context.Context, error) {
	d.mu.RLock()
	snapshot := make(map[string][]byte, len(d.values))
	for k, v := range d.values {
		snapshot[k] = v
	}
	d.mu.RUnlock()

	txn := &Txn{db: d, snapshot: snapshot, writes: make(map[string][]byte)}
	return txn, ctxutil.ContextWithTransaction(ctx, txn), nil
}

func (t *Txn) Commit() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	for k := range t.writes {
		before, hadBefore := t.snapshot[k]
		now, hasNow := t.db.values[k]
		if hadBefore != hasNow || !bytes.Equal(before, now) {
			return cerrors.Errorf("inmemory: conflict on key %q", k)
		}
	}
	for k, v := range t.writes {
		t.db.put(k, v)
	}
	t.writes = map[string][]byte{}
	return nil
}

// Discard drops buffered writes.
func (t *Txn) Discard() {
	t.writes = map[string][]byte{}
}

func (t *Txn) get(key string) ([]byte, bool) {
	if v, ok := t.writes[key]; ok {
		return v, v != nil
	}
	v, ok := t.snapshot[key]
	return v, ok
}

func (d *DB) Ping(context.Context) error {
	return nil
}

// Close is a noop.
func (d *DB) Close() error {
	return nil
}

func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	if txn := d.txn(ctx); txn != nil {
		txn.writes[key] = value
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(key, value)
	return nil
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		v  []byte
		ok bool
	)
	if txn := d.txn(ctx); txn != nil {
		v, ok = txn.get(key)
	} else {
		d.mu.RLock()
		v, ok = d.values[key]
		d.mu.RUnlock()
	}
	if !ok {
		return nil, database.ErrKeyNotExist
	}
	return v, nil
}

func (d *DB) GetKeys(ctx context.Context, prefix string) ([]string, error) {
	txn := d.txn(ctx)
	if txn == nil {
		d.mu.RLock()
		defer d.mu.RUnlock()
		return keysWithPrefix(d.values, prefix), nil
	}

	merged := make(map[string][]byte, len(txn.snapshot))
	for k, v := range txn.snapshot {
		merged[k] = v
	}
	for k, v := range txn.writes {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return keysWithPrefix(merged, prefix), nil
}

// put stores or deletes a value, the caller must hold the write lock.
func (d *DB) put(key string, value []byte) {
	if value == nil {
		delete(d.values, key)
		return
	}
	if d.values == nil {
		d.values = make(map[string][]byte)
	}
	d.values[key] = value
}

func (d *DB) txn(ctx context.Context) *Txn {
	t := ctxutil.TransactionFromContext(ctx)
	if t == nil {
		return nil
	}
	return t.(*Txn)
}

func keysWithPrefix(m map[string][]byte, prefix string) []string {
	var keys []string
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}
