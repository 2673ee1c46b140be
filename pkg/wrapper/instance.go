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

package wrapper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/csync"
	"github.com/gsnio/gsn/pkg/foundation/ctxutil"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/foundation/metrics/measure"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/gsnio/gsn/pkg/sink"
)

// InstanceConfig holds everything needed to create an Instance.
type InstanceConfig struct {
	// Name is the unique producer name.
	Name    string
	Wrapper Wrapper
	// Sink receives all published records. The instance closes it on
	// Finalize.
	Sink *sink.Sink
	// Counter is the active instance counter owned by the supervisor.
	Counter *Counter
	// DeclaredSchema is optional. If set, Initialize fails unless the
	// wrapper's output format equals it.
	DeclaredSchema record.Schema
	Logger         log.CtxLogger
}

// Instance is a deployed producer. It drives the lifecycle of its Wrapper,
// is the only path through which records reach the Sink and keeps the
// active instance counter in sync with the lifecycle.
type Instance struct {
	id       string
	name     string
	kind     string
	wrapper  Wrapper
	schema   record.Schema
	declared record.Schema
	sink     *sink.Sink
	counter  *Counter
	logger   log.CtxLogger

	status csync.ValueWatcher[Status]

	// lm serializes Initialize and Dispose.
	lm sync.Mutex

	// m guards the fields below.
	m         sync.Mutex
	finalized bool
	counted   bool
	cancelRun context.CancelFunc
	runDone   chan struct{}

	// inflight tracks the number of publish calls in progress.
	inflight csync.WaitGroup
}

func NewInstance(cfg InstanceConfig) (*Instance, error) {
	if cfg.Name == "" {
		return nil, cerrors.Errorf("could not create producer instance: %w", cerrors.ErrEmptyID)
	}
	if cfg.Wrapper == nil {
		return nil, cerrors.New("could not create producer instance: wrapper is nil")
	}
	if cfg.Sink == nil {
		return nil, cerrors.New("could not create producer instance: sink is nil")
	}
	if cfg.Counter == nil {
		cfg.Counter = NewCounter()
	}

	schema := cfg.Wrapper.OutputFormat()
	if schema.IsZero() {
		return nil, cerrors.Errorf("producer %q: wrapper %q declares no fields: %w",
			cfg.Name, cfg.Wrapper.Name(), record.ErrInvalidSchema)
	}

	id := uuid.NewString()
	logger := cfg.Logger.WithComponent("wrapper.Instance")
	logger.Logger = logger.With().
		Str(log.WrapperField, cfg.Wrapper.Name()).
		Str(log.InstanceIDField, id).
		Logger()

	i := &Instance{
		id:       id,
		name:     cfg.Name,
		kind:     cfg.Wrapper.Name(),
		wrapper:  cfg.Wrapper,
		schema:   schema,
		declared: cfg.DeclaredSchema,
		sink:     cfg.Sink,
		counter:  cfg.Counter,
		logger:   logger,
	}
	measure.ProducersGauge.WithValues(StatusCreated.String()).Inc()
	return i, nil
}

func (i *Instance) ID() string   { return i.id }
func (i *Instance) Name() string { return i.name }

// Kind returns the name of the wrapper.
func (i *Instance) Kind() string { return i.kind }

// OutputFormat returns the schema captured when the instance was created.
func (i *Instance) OutputFormat() record.Schema { return i.schema }

func (i *Instance) Sink() *sink.Sink { return i.sink }

func (i *Instance) Status() Status { return i.status.Get() }

// WaitStatus blocks until the instance reaches one of the statuses or ctx is
// done.
func (i *Instance) WaitStatus(ctx context.Context, statuses ...Status) (Status, error) {
	return i.status.Watch(ctx, csync.WatchValues(statuses...))
}

func (i *Instance) setStatus(s Status) {
	old := i.status.Get()
	if old == s {
		return
	}
	measure.ProducersGauge.WithValues(old.String()).Dec()
	measure.ProducersGauge.WithValues(s.String()).Inc()
	i.status.Set(s)
}

// Initialize initializes the wrapper. It can only be called once, on a
// freshly created instance. If it fails the instance is Failed and will
// never run.
func (i *Instance) Initialize(ctx context.Context) error {
	i.lm.Lock()
	defer i.lm.Unlock()

	i.m.Lock()
	if i.finalized {
		i.m.Unlock()
		return cerrors.Errorf("could not initialize producer %q: %w", i.name, ErrInstanceFinalized)
	}
	if s := i.status.Get(); s != StatusCreated {
		i.m.Unlock()
		return cerrors.Errorf("could not initialize producer %q in status %s: %w", i.name, s, ErrInvalidStatus)
	}
	i.m.Unlock()

	ctx = ctxutil.ContextWithProducerName(ctx, i.name)
	i.logger.Debug(ctx).Msg("initializing producer")

	start := time.Now()
	err := i.wrapper.Initialize(ctx)
	measure.InitializeDurationTimer.WithValues(i.kind).UpdateSince(start)
	if err == nil && !i.declared.IsZero() && !i.declared.Equal(i.schema) {
		err = cerrors.Errorf("declared %s, wrapper emits %s: %w", i.declared, i.schema, ErrInvalidOutputFormat)
	}
	if err != nil {
		i.setStatus(StatusFailed)
		lerr := &LifecycleError{Producer: i.name, Kind: ErrInitializationFailure, Err: err}
		i.logger.Err(ctx, lerr).Msg("producer initialization failed")
		return lerr
	}

	i.setStatus(StatusInitialized)
	i.logger.Info(ctx).
		Dur(log.DurationField, time.Since(start)).
		Msg("producer initialized")
	return nil
}

// Run runs the wrapper and blocks until it stops. It returns nil if the
// wrapper stopped because ctx was canceled, Finalize was called or the
// wrapper returned without error. Any other error marks the instance as
// Failed and is returned as a source failure.
func (i *Instance) Run(ctx context.Context) error {
	runCtx, done, err := i.prepareRun(ctx)
	if err != nil {
		return err
	}
	defer close(done)

	i.logger.Info(runCtx).Msg("producer running")
	err = i.wrapper.Run(runCtx, i)

	switch {
	case err == nil || (runCtx.Err() != nil && cerrors.Is(err, runCtx.Err())):
		i.setStatus(StatusStopped)
		i.logger.Info(runCtx).Msg("producer stopped")
		return nil
	default:
		i.setStatus(StatusFailed)
		lerr := &LifecycleError{Producer: i.name, Kind: ErrSourceFailure, Err: err}
		i.logger.Err(runCtx, lerr).Msg("producer failed")
		return lerr
	}
}

// prepareRun moves the instance to Running and registers the run in the
// counter. Finalize either happens before it and Run is refused, or it
// happens after and waits for the returned channel to be closed.
func (i *Instance) prepareRun(ctx context.Context) (context.Context, chan struct{}, error) {
	i.m.Lock()
	defer i.m.Unlock()

	if i.finalized {
		return nil, nil, cerrors.Errorf("could not run producer %q: %w", i.name, ErrInstanceFinalized)
	}
	if s := i.status.Get(); s != StatusInitialized {
		return nil, nil, cerrors.Errorf("could not run producer %q in status %s: %w", i.name, s, ErrInvalidStatus)
	}

	runCtx, cancel := context.WithCancel(ctxutil.ContextWithProducerName(ctx, i.name))
	i.cancelRun = cancel
	i.runDone = make(chan struct{})
	i.counted = true
	i.counter.Inc(i.kind)
	i.setStatus(StatusRunning)
	return runCtx, i.runDone, nil
}

// Publish validates r against the output format and forwards a copy to the
// sink. A record that does not match is rejected with
// record.ErrSchemaMismatch and the sink is left unchanged.
func (i *Instance) Publish(ctx context.Context, r record.Record) error {
	cleanup, err := i.preparePublish()
	defer cleanup()
	if err != nil {
		return err
	}

	if err := i.schema.Validate(r); err != nil {
		ctx = ctxutil.ContextWithProducerName(ctx, i.name)
		measure.RejectedRecordsCount.WithValues(i.name, "schema").Inc()
		i.logger.Warn(ctx).Err(err).Msg("record rejected")
		return err
	}

	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if err := i.sink.Enqueue(ctx, r.Clone()); err != nil {
		reason := "error"
		switch {
		case cerrors.Is(err, sink.ErrSinkFull):
			reason = "full"
		case cerrors.Is(err, sink.ErrSinkClosed):
			reason = "closed"
		}
		measure.RejectedRecordsCount.WithValues(i.name, reason).Inc()
		i.logger.Debug(ctxutil.ContextWithProducerName(ctx, i.name)).Err(err).Msg("record not enqueued")
		return cerrors.Errorf("could not publish record of producer %q: %w", i.name, err)
	}

	measure.PublishedRecordsCount.WithValues(i.name).Inc()
	return nil
}

// preparePublish makes sure the instance is not finalized and registers a
// new publish call. The returned function must be called in a deferred
// statement to signal the call is over.
func (i *Instance) preparePublish() (func(), error) {
	i.m.Lock()
	defer i.m.Unlock()
	if i.finalized {
		return func() { /* do nothing */ }, cerrors.Errorf("could not publish record of producer %q: %w", i.name, ErrInstanceFinalized)
	}
	i.inflight.Add(1)
	return i.inflight.Done, nil
}

// Finalize stops the instance and releases all resources. It runs exactly
// once, later calls return nil. In-flight publish calls are allowed to
// finish; if ctx is done before they do, the sink is closed to unblock them.
// The counter is decremented only if Run incremented it.
func (i *Instance) Finalize(ctx context.Context) error {
	i.m.Lock()
	if i.finalized {
		i.m.Unlock()
		return nil
	}
	i.finalized = true
	cancel, runDone, counted := i.cancelRun, i.runDone, i.counted
	i.m.Unlock()

	ctx = ctxutil.ContextWithProducerName(ctx, i.name)
	i.logger.Debug(ctx).Msg("finalizing producer")

	if cancel != nil {
		cancel()
	}
	if runDone != nil {
		select {
		case <-runDone:
		case <-ctx.Done():
			i.logger.Warn(ctx).Msg("run loop did not stop in time, still waiting")
			<-runDone
		}
	}

	if err := i.inflight.Wait(ctx); err != nil {
		i.logger.Warn(ctx).Err(err).Msg("in-flight publish calls did not finish in time, closing sink")
		i.sink.Close()
		_ = i.inflight.Wait(context.Background())
	}

	i.lm.Lock()
	i.logger.Debug(ctx).Msg("disposing wrapper")
	err := i.wrapper.Dispose(ctx)
	i.lm.Unlock()

	i.sink.Close()
	if counted {
		if _, decErr := i.counter.Dec(i.kind); decErr != nil {
			err = cerrors.LogOrReplace(err, decErr, func() {
				i.logger.Err(ctx, decErr).Msg("could not decrement active instance counter")
			})
		}
	}
	i.setStatus(StatusFinalized)

	if err != nil {
		return cerrors.Errorf("could not dispose producer %q: %w", i.name, err)
	}
	i.logger.Info(ctx).Msg("producer finalized")
	return nil
}
