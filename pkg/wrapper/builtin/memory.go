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
	"runtime"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/gsnio/gsn/pkg/wrapper"
)

const MemoryKind = "memory"

var memorySchema = record.MustSchema(
	record.Field{Name: "heap_alloc", Type: record.TypeBigInt, Unit: "bytes"},
	record.Field{Name: "heap_sys", Type: record.TypeBigInt, Unit: "bytes"},
	record.Field{Name: "num_goroutine", Type: record.TypeBigInt},
)

// Memory samples the memory usage of the running process.
type Memory struct {
	rate   time.Duration
	logger log.CtxLogger
}

func NewMemory(cfg wrapper.Config) (wrapper.Wrapper, error) {
	rate, err := durationSetting(cfg.Settings, "rate", time.Second)
	if err != nil {
		return nil, cerrors.Errorf("invalid memory settings: %w", err)
	}
	return &Memory{rate: rate, logger: cfg.Logger.WithComponent("builtin.Memory")}, nil
}

func (*Memory) Name() string                     { return MemoryKind }
func (*Memory) OutputFormat() record.Schema      { return memorySchema }
func (*Memory) Initialize(context.Context) error { return nil }
func (*Memory) Dispose(context.Context) error    { return nil }

func (m *Memory) Run(ctx context.Context, p wrapper.Publisher) error {
	return tick(ctx, m.rate, func() error {
		if err := p.Publish(ctx, m.sample()); err != nil && ctx.Err() == nil {
			m.logger.Warn(ctx).Err(err).Msg("could not publish memory sample")
		}
		return nil
	})
}

func (m *Memory) sample() record.Record {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return record.New(map[string]any{
		"heap_alloc":    int64(ms.HeapAlloc),
		"heap_sys":      int64(ms.HeapSys),
		"num_goroutine": int64(runtime.NumGoroutine()),
	})
}
