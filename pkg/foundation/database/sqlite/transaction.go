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

package sqlite

import (
	"context"
	"database/sql"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/gsnio/gsn/pkg/foundation/log"
)

// Transaction wraps a sql transaction.
type Transaction struct {
	ctx    context.Context
	tx     *sql.Tx
	logger log.CtxLogger
}

var _ database.Transaction = (*Transaction)(nil)

func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Discard rolls the transaction back, it is a noop after Commit.
func (t *Transaction) Discard() {
	err := t.tx.Rollback()
	if err != nil && !cerrors.Is(err, sql.ErrTxDone) {
		t.logger.Err(t.ctx, err).Msg("could not roll back transaction")
	}
}
