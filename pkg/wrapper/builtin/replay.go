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

package builtin

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/gsnio/gsn/pkg/wrapper"
)

const (
	ReplayKind = "replay"

	// replayFirstDelay is the delay before the first record is published.
	replayFirstDelay = 500 * time.Millisecond
)

// Replay publishes records previously recorded as JSON lines, in the format
// produced by record.Record.Bytes. The delay between two records is the
// difference of their timestamps divided by "speed".
//
// Settings:
//   - path: file containing the records (required)
//   - output-format: schema of the records, e.g. "t:double,id:int" (required)
//   - speed: integer >= 1, defaults to 1
type Replay struct {
	path   string
	speed  int
	schema record.Schema
	logger log.CtxLogger

	file *os.File
}

func NewReplay(cfg wrapper.Config) (wrapper.Wrapper, error) {
	logger := cfg.Logger.WithComponent("builtin.Replay")

	path := cfg.Settings["path"]
	if path == "" {
		return nil, cerrors.New(`invalid replay settings: "path" is required`)
	}

	schema := cfg.Schema
	if f := cfg.Settings["output-format"]; f != "" {
		var err error
		schema, err = record.ParseSchema(f)
		if err != nil {
			return nil, cerrors.Errorf(`invalid replay setting "output-format": %w`, err)
		}
	}
	if schema.IsZero() {
		return nil, cerrors.New(`invalid replay settings: "output-format" is required`)
	}

	speed := 1
	if v, ok := cfg.Settings["speed"]; ok {
		s, err := strconv.Atoi(v)
		if err != nil || s <= 0 {
			logger.Warn(context.Background()).
				Str("speed", v).
				Msg("invalid speed, speed is set to 1")
			s = 1
		}
		speed = s
	}

	return &Replay{
		path:   path,
		speed:  speed,
		schema: schema,
		logger: logger,
	}, nil
}

func (*Replay) Name() string                  { return ReplayKind }
func (r *Replay) OutputFormat() record.Schema { return r.schema }

func (r *Replay) Initialize(ctx context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return cerrors.Errorf("could not open replay file: %w", err)
	}
	r.file = f
	r.logger.Info(ctx).
		Str(log.FilepathField, r.path).
		Int("speed", r.speed).
		Msg("replay file opened")
	return nil
}

func (r *Replay) Run(ctx context.Context, p wrapper.Publisher) error {
	if r.file == nil {
		return cerrors.New("replay file is not open")
	}
	dec := json.NewDecoder(r.file)
	// keep bigint values above 2^53 exact
	dec.UseNumber()

	var prev time.Time
	delay := replayFirstDelay
	for n := 1; ; n++ {
		var raw record.Record
		if err := dec.Decode(&raw); err != nil {
			if cerrors.Is(err, io.EOF) {
				r.logger.Info(ctx).Int("records", n-1).Msg("replay finished")
				return nil
			}
			// the file stays corrupt, replaying it again would not help
			return cerrors.NewFatalError(cerrors.Errorf("could not decode record %d: %w", n, err))
		}

		rec, err := r.convert(raw)
		if err != nil {
			r.logger.Warn(ctx).Err(err).Int("record", n).Msg("skipping record")
			continue
		}
		if !prev.IsZero() {
			delay = rec.Timestamp.Sub(prev) / time.Duration(r.speed)
		}
		prev = rec.Timestamp

		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
		}
		if err := p.Publish(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Warn(ctx).Err(err).Int("record", n).Msg("could not publish record")
		}
	}
}

// convert turns decoded JSON values into the Go types of the schema.
func (r *Replay) convert(raw record.Record) (record.Record, error) {
	out := record.Record{
		Timestamp: raw.Timestamp,
		Fields:    make(map[string]any, len(raw.Fields)),
	}
	for name, v := range raw.Fields {
		f, ok := r.schema.Field(name)
		if !ok {
			// let schema validation report the extra field
			out.Fields[name] = v
			continue
		}
		if v == nil {
			out.Fields[f.Name] = nil
			continue
		}
		if s, ok := v.(string); ok && f.Type == record.TypeBinary {
			// binary values are stored base64 encoded
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return record.Record{}, cerrors.Errorf("field %q: %w", name, err)
			}
			out.Fields[f.Name] = b
			continue
		}
		cv, err := f.Type.Convert(v)
		if err != nil {
			return record.Record{}, cerrors.Errorf("field %q: %w", name, err)
		}
		out.Fields[f.Name] = cv
	}
	return out, nil
}

func (r *Replay) Dispose(context.Context) error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
