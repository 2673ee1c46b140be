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
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/ctxutil"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB stores keys in a single table of a sqlite database file named gsn.db.
type DB struct {
	db     *sql.DB
	logger log.CtxLogger
	table  string
}

var _ database.DB = (*DB)(nil)

// New opens the database in directory dir and creates table if needed.
func New(ctx context.Context, l zerolog.Logger, dir, table string) (*DB, error) {
	dsn, err := dataSourceName(dir)
	if err != nil {
		return nil, cerrors.Errorf("sqlite: invalid path %q: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, cerrors.Errorf("sqlite: could not open database: %w", err)
	}

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		key   TEXT NOT NULL PRIMARY KEY CHECK(key != ''),
		value BLOB
	)`, table)
	if _, err := db.ExecContext(ctx, create); err != nil {
		_ = db.Close()
		return nil, cerrors.Errorf("sqlite: could not create table %q: %w", table, err)
	}

	return &DB{
		db:     db,
		logger: log.New(l).WithComponent("sqlite.DB"),
		table:  table,
	}, nil
}

func (d *DB) NewTransaction(ctx context.Context, update bool) (database.Transaction, context.Context, error) {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: !update})
	if err != nil {
		return nil, ctx, cerrors.Errorf("sqlite: could not begin transaction: %w", err)
	}
	txn := &Transaction{ctx: ctx, tx: tx, logger: d.logger}
	return txn, ctxutil.ContextWithTransaction(ctx, txn), nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		return d.delete(ctx, key)
	}
	query := fmt.Sprintf(`INSERT INTO %q (key, value) VALUES ($1, $2)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, d.table)
	if _, err := d.querier(ctx).ExecContext(ctx, query, key, value); err != nil {
		return cerrors.Errorf("sqlite: could not set key %q: %w", key, err)
	}
	return nil
}

func (d *DB) delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %q WHERE key = $1`, d.table)
	res, err := d.querier(ctx).ExecContext(ctx, query, key)
	if err != nil {
		return cerrors.Errorf("sqlite: could not delete key %q: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		d.logger.Debug(ctx).Str("key", key).Msg("deleted key did not exist")
	}
	return nil
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %q WHERE key = $1`, d.table)
	var value []byte
	err := d.querier(ctx).QueryRowContext(ctx, query, key).Scan(&value)
	if cerrors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrKeyNotExist
	}
	if err != nil {
		return nil, cerrors.Errorf("sqlite: could not get key %q: %w", key, err)
	}
	if value == nil {
		// an empty blob can come back as nil
		value = []byte{}
	}
	return value, nil
}

// GetKeys compares the key prefix literally, LIKE wildcards in prefix have no
// special meaning.
func (d *DB) GetKeys(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf(`SELECT key FROM %q WHERE substr(key, 1, $1) = $2`, d.table)
	rows, err := d.querier(ctx).QueryContext(ctx, query, len(prefix), prefix)
	if err != nil {
		return nil, cerrors.Errorf("sqlite: could not list keys with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, cerrors.Errorf("sqlite: could not scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Errorf("sqlite: could not list keys with prefix %q: %w", prefix, err)
	}
	return keys, nil
}

type querier interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// querier returns the transaction from ctx or falls back to the connection
// pool.
func (d *DB) querier(ctx context.Context) querier {
	if t := ctxutil.TransactionFromContext(ctx); t != nil {
		return t.(*Transaction).tx
	}
	return d.db
}

func dataSourceName(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")

	u := url.URL{
		Scheme:   "file",
		Path:     filepath.Join(abs, "gsn.db"),
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}
