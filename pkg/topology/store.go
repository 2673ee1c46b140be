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

package topology

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/database"
)

const (
	// storeKeyPrefix is added to all keys before storing them in store. Do not
	// change unless you know what you're doing and you have a migration plan in
	// place.
	storeKeyPrefix = "topology:declaration:"
)

// Store handles the persistence and fetching of declarations of the
// deployed topology.
type Store struct {
	db database.DB
}

func NewStore(db database.DB) *Store {
	return &Store{
		db: db,
	}
}

// Set stores the declaration under its name.
func (s *Store) Set(ctx context.Context, d Declaration) error {
	if d.Name == "" {
		return cerrors.Errorf("can't store declaration: %w", cerrors.ErrEmptyID)
	}

	raw, err := s.encode(d)
	if err != nil {
		return cerrors.Errorf("failed to encode declaration %q: %w", d.Name, err)
	}

	err = s.db.Set(ctx, s.addKeyPrefix(d.Name), raw)
	if err != nil {
		return cerrors.Errorf("failed to store declaration %q: %w", d.Name, err)
	}
	return nil
}

// Delete deletes the declaration with the given name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return cerrors.Errorf("can't delete declaration: %w", cerrors.ErrEmptyID)
	}

	err := s.db.Set(ctx, s.addKeyPrefix(name), nil)
	if err != nil {
		return cerrors.Errorf("failed to delete declaration %q: %w", name, err)
	}
	return nil
}

// Get returns the declaration with the given name. If it does not exist the
// error matches database.ErrKeyNotExist.
func (s *Store) Get(ctx context.Context, name string) (Declaration, error) {
	raw, err := s.db.Get(ctx, s.addKeyPrefix(name))
	if err != nil {
		return Declaration{}, cerrors.Errorf("failed to get declaration %q: %w", name, err)
	}
	if len(raw) == 0 {
		return Declaration{}, cerrors.Errorf("database returned empty declaration for %q", name)
	}
	return s.decode(raw)
}

// GetAll returns all stored declarations.
func (s *Store) GetAll(ctx context.Context) (map[string]Declaration, error) {
	keys, err := s.db.GetKeys(ctx, s.addKeyPrefix(""))
	if err != nil {
		return nil, cerrors.Errorf("failed to retrieve keys: %w", err)
	}
	decls := make(map[string]Declaration, len(keys))
	for _, key := range keys {
		raw, err := s.db.Get(ctx, key)
		if err != nil {
			return nil, cerrors.Errorf("failed to get declaration %q: %w", key, err)
		}
		d, err := s.decode(raw)
		if err != nil {
			return nil, cerrors.Errorf("failed to decode declaration %q: %w", key, err)
		}
		decls[s.trimKeyPrefix(key)] = d
	}
	return decls, nil
}

// Replace swaps all stored declarations for the declarations of t in a
// single transaction.
func (s *Store) Replace(ctx context.Context, t *Topology) error {
	txn, ctx, err := s.db.NewTransaction(ctx, true)
	if err != nil {
		return cerrors.Errorf("could not start transaction: %w", err)
	}
	defer txn.Discard()

	keys, err := s.db.GetKeys(ctx, s.addKeyPrefix(""))
	if err != nil {
		return cerrors.Errorf("failed to retrieve keys: %w", err)
	}
	for _, key := range keys {
		if err := s.db.Set(ctx, key, nil); err != nil {
			return cerrors.Errorf("failed to delete declaration %q: %w", s.trimKeyPrefix(key), err)
		}
	}
	for _, d := range t.Declarations() {
		if err := s.Set(ctx, d); err != nil {
			return err
		}
	}

	if err := txn.Commit(); err != nil {
		return cerrors.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// store is namespaced, meaning that keys all have the same prefix.
func (*Store) addKeyPrefix(name string) string {
	return storeKeyPrefix + name
}

func (*Store) trimKeyPrefix(key string) string {
	return strings.TrimPrefix(key, storeKeyPrefix)
}

func (*Store) encode(d Declaration) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (*Store) decode(raw []byte) (Declaration, error) {
	var d Declaration
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&d); err != nil {
		return Declaration{}, err
	}
	return d, nil
}
