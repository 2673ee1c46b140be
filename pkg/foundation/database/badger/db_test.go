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
	"bytes"
	"path/filepath"
	"testing"

	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestDB(t *testing.T) {
	is := is.New(t)

	db, err := New(zerolog.Nop(), filepath.Join(t.TempDir(), "badger.db"))
	is.NoErr(err)
	t.Cleanup(func() { is.NoErr(db.Close()) })

	database.AcceptanceTest(t, db)
	database.ConcurrencyAcceptanceTest(t, db)
}

func TestLogger_TrimsNewline(t *testing.T) {
	is := is.New(t)

	var out bytes.Buffer
	l := logger(zerolog.New(&out))
	l.Warningf("value log %d rotated\n", 3)

	is.Equal(out.String(), `{"level":"warn","message":"value log 3 rotated"}`+"\n")
}
