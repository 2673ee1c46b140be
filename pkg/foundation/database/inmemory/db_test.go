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

package inmemory

import (
	"context"
	"testing"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/matryer/is"
)

func TestDB(t *testing.T) {
	db := &DB{}
	database.AcceptanceTest(t, db)
	database.ConcurrencyAcceptanceTest(t, db)
}

func TestTxn_CommitConflict(t *testing.T) {
	is := is.New(t)
	db := &DB{}

	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	defer txn.Discard()

	is.NoErr(db.Set(ctx, "station-a", []byte("from txn")))
	// concurrent write outside the transaction
	is.NoErr(db.Set(context.Background(), "station-a", []byte("direct")))

	err = txn.Commit()
	is.True(err != nil)

	got, err := db.Get(context.Background(), "station-a")
	is.NoErr(err)
	is.Equal(got, []byte("direct"))
}

func TestTxn_Discard(t *testing.T) {
	is := is.New(t)
	db := &DB{}

	txn, ctx, err := db.NewTransaction(context.Background(), true)
	is.NoErr(err)
	is.NoErr(db.Set(ctx, "station-a", []byte("value")))
	txn.Discard()
	is.NoErr(txn.Commit()) // nothing left to commit

	_, err = db.Get(context.Background(), "station-a")
	is.True(cerrors.Is(err, database.ErrKeyNotExist))
}
