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

package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/ctxutil"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/rs/zerolog"
)

// DB persists keys in a badger store on disk.
type DB struct {
	db *badger.DB
}

var _ database.DB = (*DB)(nil)

// New opens or creates the badger store in directory path.
func New(l zerolog.Logger, path string) (*DB, error) {
	opt := badger.DefaultOptions(path)
	opt.Logger = logger(l.With().Str(log.ComponentField, "badger.DB").Logger())

	db, err := badger.Open(opt)
	if err != nil {
		return nil, cerrors.Errorf("badger: could not open db at %q: %w", path, err)
	}
	return &DB{db: db}, nil
}

// NewTransaction returns a badger transaction and a context that carries it.
func (d *DB) NewTransaction(ctx context.Context, update bool) (database.Transaction, context.Context, error) {
	txn := d.db.NewTransaction(update)
	return txn, ctxutil.ContextWithTransaction(ctx, txn), nil
}

// Ping writes and removes a throwaway key.
func (d *DB) Ping(ctx context.Context) error {
	key := "ping-" + uuid.NewString()
	if err := d.Set(ctx, key, []byte{}); err != nil {
		return err
	}
	return d.Set(ctx, key, nil)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := d.read(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if cerrors.Is(err, badger.ErrKeyNotFound) {
			return database.ErrKeyNotExist
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, cerrors.Errorf("badger: could not get key %q: %w", key, err)
	}
	return val, nil
}

// Set writes value under key, a nil value deletes the key. An empty, non-nil
// value is stored as such.
func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	err := d.write(ctx, func(txn *badger.Txn) error {
		if value == nil {
			return txn.Delete([]byte(key))
		}
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return cerrors.Errorf("badger: could not set key %q: %w", key, err)
	}
	return nil
}

func (d *DB) GetKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := d.read(ctx, func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Prefix = []byte(prefix)
		opt.PrefetchValues = false
		it := txn.NewIterator(opt)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, cerrors.Errorf("badger: could not list keys with prefix %q: %w", prefix, err)
	}
	return keys, nil
}

// read runs fn in the transaction from ctx or in a new read-only one.
func (d *DB) read(ctx context.Context, fn func(*badger.Txn) error) error {
	if txn := d.txn(ctx); txn != nil {
		return fn(txn)
	}
	return d.db.View(fn)
}

// write runs fn in the transaction from ctx or in a new one that is committed
// when fn succeeds.
func (d *DB) write(ctx context.Context, fn func(*badger.Txn) error) error {
	if txn := d.txn(ctx); txn != nil {
		return fn(txn)
	}
	return d.db.Update(fn)
}

func (d *DB) txn(ctx context.Context) *badger.Txn {
	txn := ctxutil.TransactionFromContext(ctx)
	if txn == nil {
		return nil
	}
	return txn.(*badger.Txn)
}
