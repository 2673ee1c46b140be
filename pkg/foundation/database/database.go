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

// Package database defines the key-value store used to persist deployed
// topologies. Implementations live in the sub-packages inmemory, badger and
// sqlite.
package database

import (
	"context"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

// ErrKeyNotExist is returned by DB.Get if the key is not present.
var ErrKeyNotExist = cerrors.New("key does not exist")

// DB is a key-value store with optional transactions. Operations take the
// transaction from the context created by NewTransaction, if there is one.
type DB interface {
	// NewTransaction starts a transaction and returns it together with a
	// context carrying it. Read-only transactions are requested with
	// update=false.
	NewTransaction(ctx context.Context, update bool) (Transaction, context.Context, error)
	// Ping checks that the store is reachable and writable.
	Ping(ctx context.Context) error
	// Close flushes pending writes and releases the store. The DB must not
	// be used afterwards.
	Close() error

	// Set stores value under key, a nil value deletes the key.
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// GetKeys returns all keys starting with prefix in no particular order.
	GetKeys(ctx context.Context, prefix string) ([]string, error)
}

// Transaction is an isolated unit of work. Discard must always be called,
// it is a noop after Commit, so it can be deferred right after creation.
type Transaction interface {
	Commit() error
	Discard()
}
