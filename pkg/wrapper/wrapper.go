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

//go:generate mockgen -destination=mock/wrapper.go -package=mock -mock_names=Wrapper=Wrapper . Wrapper

// Package wrapper contains the producer abstraction. A Wrapper adapts one
// external data source. An Instance owns one Wrapper for the lifetime of a
// deployed producer, validates everything it publishes and keeps track of
// its lifecycle.
package wrapper

import (
	"context"

	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/record"
)

// Wrapper is implemented by data sources.
type Wrapper interface {
	// Name returns the kind of the wrapper, e.g. "mock". All instances
	// created by the same factory share it.
	Name() string
	// OutputFormat returns the schema of every record the wrapper emits. It
	// must not change during the lifetime of the wrapper.
	OutputFormat() record.Schema
	// Initialize prepares the source, e.g. opens a device or connection. If
	// it fails, Run is never called.
	Initialize(ctx context.Context) error
	// Run produces records until ctx is canceled or the source fails for
	// good. Records are handed to the publisher, a rejected record does not
	// have to stop the loop.
	Run(ctx context.Context, p Publisher) error
	// Dispose releases all resources. It is called exactly once, after Run
	// returned, even if Initialize failed.
	Dispose(ctx context.Context) error
}

// Publisher accepts records emitted by a wrapper.
type Publisher interface {
	Publish(ctx context.Context, r record.Record) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, r record.Record) error

func (f PublisherFunc) Publish(ctx context.Context, r record.Record) error {
	return f(ctx, r)
}

// Config is passed to a Factory when a producer is deployed.
type Config struct {
	// Name is the producer name, the key of the node in the dependency graph.
	Name string
	// Settings are the wrapper specific settings of the declaration.
	Settings map[string]string
	// Schema is the declared output format, it is empty if the declaration
	// does not declare one.
	Schema record.Schema
	Logger log.CtxLogger
}

// Factory creates a wrapper for a producer.
type Factory func(cfg Config) (Wrapper, error)
