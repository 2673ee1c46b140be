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

package database

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/csync"
	"github.com/matryer/is"
)

// AcceptanceTest runs the behavior every DB implementation has to provide.
// Implementations call it from their own tests:
//
//	func TestDB(t *testing.T) {
//		database.AcceptanceTest(t, &inmemory.DB{})
//	}
func AcceptanceTest(t *testing.T, db DB) {
	t.Run("SetGet", func(t *testing.T) { testSetGet(t, db) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, db) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, db) })
	t.Run("GetKeys", func(t *testing.T) { testGetKeys(t, db) })
	t.Run("TransactionVisibility", func(t *testing.T) { testTransactionVisibility(t, db) })
	t.Run("Ping", func(t *testing.T) { is.New(t).NoErr(db.Ping(context.Background())) })
}

// ConcurrencyAcceptanceTest hammers the DB from many goroutines, mixing
// transactional and direct access.
func ConcurrencyAcceptanceTest(t *testing.T, db DB) {
	const (
		workers = 50
		loops   = 50
	)
	is := is.New(t)
	ctx := context.Background()

	iteration := func(ctx context.Context, worker, i int) (err error) {
		if i%2 == 0 {
			var txn Transaction
			txn, ctx, err = db.NewTransaction(ctx, true)
			if err != nil {
				return err
			}
			defer func() {
				if err != nil || i%4 == 0 {
					txn.Discard()
					return
				}
				err = txn.Commit()
			}()
		}

		key := fmt.Sprintf("topology:declaration:w%d-%d", worker, i)
		val := []byte(uuid.NewString())
		if _, err := db.Get(ctx, key); !cerrors.Is(err, ErrKeyNotExist) {
			return cerrors.Errorf("get %q before set: expected ErrKeyNotExist, got %w", key, err)
		}
		if err := db.Set(ctx, key, val); err != nil {
			return err
		}
		got, err := db.Get(ctx, key)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, val) {
			return cerrors.Errorf("key %q: expected %q, got %q", key, val, got)
		}
		return nil
	}

	var wg csync.WaitGroup
	errs := make([]error, workers)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < loops; i++ {
				if err := iteration(ctx, w, i); err != nil {
					errs[w] = err
					return
				}
			}
		}(w)
	}
	is.NoErr(wg.WaitTimeout(ctx, 10*time.Second))
	is.NoErr(cerrors.Join(errs...))
}

func testSetGet(t *testing.T, db DB) {
	is := is.New(t)
	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	defer txn.Discard()

	want := []byte(`{"name":"station-a"}`)
	is.NoErr(db.Set(ctx, "station-a", want))

	got, err := db.Get(ctx, "station-a")
	is.NoErr(err)
	is.Equal(got, want)

	_, err = db.Get(ctx, "station-b")
	is.True(cerrors.Is(err, ErrKeyNotExist))
}

func testOverwrite(t *testing.T, db DB) {
	is := is.New(t)
	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	defer txn.Discard()

	is.NoErr(db.Set(ctx, "station-a", []byte("old")))
	is.NoErr(db.Set(ctx, "station-a", []byte("new")))

	got, err := db.Get(ctx, "station-a")
	is.NoErr(err)
	is.Equal(got, []byte("new"))
}

func testDelete(t *testing.T, db DB) {
	is := is.New(t)
	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	defer txn.Discard()

	is.NoErr(db.Set(ctx, "station-a", []byte("value")))
	is.NoErr(db.Set(ctx, "station-a", nil))

	got, err := db.Get(ctx, "station-a")
	is.True(cerrors.Is(err, ErrKeyNotExist))
	is.Equal(got, nil)
}

func testGetKeys(t *testing.T, db DB) {
	is := is.New(t)
	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	defer txn.Discard()

	var want []string
	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("node:%02d", i)
		want = append(want, key)
		is.NoErr(db.Set(ctx, key, []byte{byte(i)}))
	}
	is.NoErr(db.Set(ctx, "other", []byte("x")))

	got, err := db.GetKeys(ctx, "node:")
	is.NoErr(err)
	sort.Strings(got)
	is.Equal(got, want)

	got, err = db.GetKeys(ctx, "")
	is.NoErr(err)
	is.Equal(len(got), len(want)+1)

	got, err = db.GetKeys(ctx, "missing:")
	is.NoErr(err)
	is.Equal(len(got), 0)
}

func testTransactionVisibility(t *testing.T, db DB) {
	is := is.New(t)
	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	defer txn.Discard()

	key := "visibility-" + uuid.NewString()
	is.NoErr(db.Set(ctx, key, []byte("value")))

	// not visible outside the transaction
	_, err = db.Get(context.Background(), key)
	is.True(cerrors.Is(err, ErrKeyNotExist))

	is.NoErr(txn.Commit())
	t.Cleanup(func() { _ = db.Set(context.Background(), key, nil) })

	got, err := db.Get(context.Background(), key)
	is.NoErr(err)
	is.Equal(got, []byte("value"))
}
