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
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/gsnio/gsn/pkg/wrapper"
)

const MockKind = "mock"

var mockSchema = record.MustSchema(record.Field{Name: "data", Type: record.TypeInteger})

// Mock emits an increasing counter in field "data" every "rate" (default 1s).
// With rate 0 it emits nothing.
type Mock struct {
	rate   time.Duration
	logger log.CtxLogger
}

func NewMock(cfg wrapper.Config) (wrapper.Wrapper, error) {
	rate, err := durationSetting(cfg.Settings, "rate", time.Second)
	if err != nil {
		return nil, cerrors.Errorf("invalid mock settings: %w", err)
	}
	return &Mock{rate: rate, logger: cfg.Logger.WithComponent("builtin.Mock")}, nil
}

func (*Mock) Name() string                     { return MockKind }
func (*Mock) OutputFormat() record.Schema      { return mockSchema }
func (*Mock) Initialize(context.Context) error { return nil }
func (*Mock) Dispose(context.Context) error    { return nil }

func (m *Mock) Run(ctx context.Context, p wrapper.Publisher) error {
	m.logger.Debug(ctx).Dur("rate", m.rate).Msg("mock wrapper started")
	var n int32
	return tick(ctx, m.rate, func() error {
		err := p.Publish(ctx, record.New(map[string]any{"data": n}))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			m.logger.Warn(ctx).Err(err).Msg("could not publish record")
		}
		n++
		return nil
	})
}
