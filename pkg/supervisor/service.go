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

// Package supervisor deploys a topology: it creates, initializes, runs,
// restarts and finalizes one producer instance per declared node.
package supervisor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/ctxutil"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/foundation/metrics/measure"
	"github.com/gsnio/gsn/pkg/sink"
	"github.com/gsnio/gsn/pkg/topology"
	"github.com/gsnio/gsn/pkg/wrapper"
	"github.com/jpillora/backoff"
	"github.com/sourcegraph/conc/pool"
	"gopkg.in/tomb.v2"
)

var (
	ErrAlreadyDeployed    = cerrors.New("topology already deployed")
	ErrProducerNotFound   = cerrors.New("producer not found")
	ErrProducerNotRunning = cerrors.New("producer not running")
)

type FailureEvent struct {
	// Producer is the name of the producer which failed.
	Producer string
	Error    error
}

type FailureHandler func(FailureEvent)

// Service owns all producer instances of a deployed topology.
type Service struct {
	logger   log.CtxLogger
	cfg      Config
	registry *wrapper.Registry
	counter  *wrapper.Counter

	m         sync.Mutex
	deployed  bool
	topology  *topology.Topology
	producers map[string]*runnableProducer

	hm       sync.Mutex
	handlers []FailureHandler
}

type runnableProducer struct {
	decl topology.Declaration

	m        sync.Mutex
	instance *wrapper.Instance
	t        *tomb.Tomb
	backoff  *backoff.Backoff
	restarts int
}

func (rp *runnableProducer) current() *wrapper.Instance {
	rp.m.Lock()
	defer rp.m.Unlock()
	return rp.instance
}

func (rp *runnableProducer) replace(i *wrapper.Instance) {
	rp.m.Lock()
	defer rp.m.Unlock()
	rp.instance = i
}

// NewService initializes and returns a supervisor.Service.
func NewService(logger log.CtxLogger, cfg Config, registry *wrapper.Registry) *Service {
	return &Service{
		logger:    logger.WithComponent("supervisor.Service"),
		cfg:       cfg,
		registry:  registry,
		counter:   wrapper.NewCounter(),
		producers: make(map[string]*runnableProducer),
	}
}

// OnFailure registers a handler for a FailureEvent. Handlers are notified
// about initialization and source failures.
func (s *Service) OnFailure(handler FailureHandler) {
	s.hm.Lock()
	defer s.hm.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Counter returns the active instance counter of all producers.
func (s *Service) Counter() *wrapper.Counter {
	return s.counter
}

// Deploy creates and initializes a producer for every declared node of t in
// deployment order and starts those that initialized successfully. Nodes
// without a wrapper are skipped. Initialization failures do not stop the
// deployment, they are returned together once all producers are started.
// Producers that failed to initialize stay Failed until they are stopped.
// Failure handlers are notified after the deployment, so they may query the
// service.
func (s *Service) Deploy(ctx context.Context, t *topology.Topology) error {
	failures, err := s.deploy(ctx, t)
	for _, e := range failures {
		s.notify(e.Producer, e.Error)
	}
	return err
}

func (s *Service) deploy(ctx context.Context, t *topology.Topology) ([]FailureEvent, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.deployed {
		return nil, ErrAlreadyDeployed
	}
	s.deployed = true
	s.topology = t

	var (
		failures []FailureEvent
		errs     []error
	)
	for _, name := range t.Order() {
		decl, ok := t.Declaration(name)
		if !ok || !decl.Deployable() {
			s.logger.Debug(ctx).
				Str(log.NodeField, name).
				Msg("node has no wrapper, skipping")
			continue
		}

		rp := &runnableProducer{decl: decl, backoff: s.cfg.Restart.backoff()}
		s.producers[name] = rp

		inst, err := s.newInstance(ctx, decl)
		if inst != nil {
			rp.instance = inst
		}
		if err != nil {
			errs = append(errs, err)
			failures = append(failures, FailureEvent{Producer: name, Error: err})
			continue
		}
		s.start(rp)
	}

	s.logger.Info(ctx).
		Int("producers", len(s.producers)).
		Int("failed", len(errs)).
		Msg("topology deployed")
	return failures, cerrors.Join(errs...)
}

// newInstance creates and initializes a producer. If the instance was
// created but could not be initialized, it is returned together with the
// error and has to be finalized by the caller.
func (s *Service) newInstance(ctx context.Context, decl topology.Declaration) (*wrapper.Instance, error) {
	w, err := s.registry.Create(decl.Wrapper, wrapper.Config{
		Name:     decl.Name,
		Settings: decl.Settings,
		Schema:   decl.Schema,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, &wrapper.LifecycleError{Producer: decl.Name, Kind: wrapper.ErrInitializationFailure, Err: err}
	}

	inst, err := wrapper.NewInstance(wrapper.InstanceConfig{
		Name:           decl.Name,
		Wrapper:        w,
		Sink:           sink.New(decl.Name, s.cfg.Sink),
		Counter:        s.counter,
		DeclaredSchema: decl.Schema,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, &wrapper.LifecycleError{Producer: decl.Name, Kind: wrapper.ErrInitializationFailure, Err: err}
	}

	if err := inst.Initialize(ctx); err != nil {
		return inst, err
	}
	return inst, nil
}

// finalize finalizes an instance that is not running, e.g. because it failed
// to initialize.
func (s *Service) finalize(ctx context.Context, inst *wrapper.Instance) {
	if err := inst.Finalize(ctx); err != nil {
		s.logger.Err(ctx, err).Str(log.ProducerField, inst.Name()).Msg("could not finalize producer")
	}
}

// start runs the producer in a goroutine owned by a new tomb.
func (s *Service) start(rp *runnableProducer) {
	rp.m.Lock()
	rp.t = &tomb.Tomb{}
	t := rp.t
	rp.m.Unlock()

	t.Go(func() error {
		return s.runProducer(t.Context(nil), rp)
	})
}

// runProducer runs the current instance until it stops. After a source
// failure the restart policy decides if a new instance is created, fatal
// errors are never retried. The restart delay grows with every failure in a
// row and is reset once an instance ran for at least the maximum delay.
func (s *Service) runProducer(ctx context.Context, rp *runnableProducer) error {
	name := rp.decl.Name
	ctx = ctxutil.ContextWithProducerName(ctx, name)

	for {
		inst := rp.current()
		started := time.Now()
		runErr := inst.Run(ctx)

		// use a fresh context, the run context is canceled when stopping
		if err := inst.Finalize(context.Background()); err != nil {
			s.logger.Err(ctx, err).Msg("could not finalize producer")
		}
		if runErr == nil {
			s.logger.Info(ctx).Msg("producer stopped")
			return nil
		}
		s.notify(name, runErr)

		if s.cfg.Restart.recovered(time.Since(started)) {
			rp.backoff.Reset()
			rp.restarts = 0
		}

		for {
			if ctx.Err() != nil {
				return nil
			}
			if s.cfg.Restart.exhausted(rp.restarts) || cerrors.IsFatalError(runErr) {
				s.logger.Err(ctx, runErr).
					Int(log.AttemptField, rp.restarts).
					Msg("producer failed, not restarting")
				return runErr
			}

			delay := rp.backoff.Duration()
			rp.restarts++
			s.logger.Warn(ctx).
				Err(runErr).
				Int(log.AttemptField, rp.restarts).
				Dur("delay", delay).
				Msg("restarting producer")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}

			measure.ProducerRestartsCount.WithValues(name).Inc()
			next, err := s.newInstance(ctx, rp.decl)
			if next != nil {
				rp.replace(next)
			}
			if err != nil {
				if next != nil {
					s.finalize(context.Background(), next)
				}
				s.notify(name, err)
				runErr = err
				continue
			}
			break
		}
	}
}

// Stop stops the producer and waits until its instance is finalized or ctx
// is done. A producer that failed to initialize is only finalized.
func (s *Service) Stop(ctx context.Context, name string) error {
	rp, err := s.get(name)
	if err != nil {
		return err
	}
	rp.m.Lock()
	t := rp.t
	rp.m.Unlock()

	switch {
	case t == nil:
		if inst := rp.current(); inst == nil || inst.Status() == wrapper.StatusFinalized {
			return cerrors.Errorf("%q: %w", name, ErrProducerNotRunning)
		}
	case !t.Alive():
		return cerrors.Errorf("%q: %w", name, ErrProducerNotRunning)
	}
	return s.stop(ctx, rp)
}

func (s *Service) stop(ctx context.Context, rp *runnableProducer) error {
	rp.m.Lock()
	t := rp.t
	rp.m.Unlock()
	if t == nil {
		// never started, only release resources
		if inst := rp.current(); inst != nil {
			s.finalize(ctx, inst)
		}
		return nil
	}

	s.logger.Info(ctx).
		Str(log.ProducerField, rp.decl.Name).
		Stringer(log.ProducerStatusField, rp.current().Status()).
		Msg("stopping producer")
	t.Kill(nil)

	select {
	case <-t.Dead():
		return nil
	case <-ctx.Done():
		return cerrors.Errorf("producer %q did not stop in time: %w", rp.decl.Name, ctx.Err())
	}
}

// StopAll stops all producers concurrently.
func (s *Service) StopAll(ctx context.Context) error {
	s.m.Lock()
	producers := make([]*runnableProducer, 0, len(s.producers))
	for _, rp := range s.producers {
		producers = append(producers, rp)
	}
	s.m.Unlock()

	if len(producers) == 0 {
		return nil
	}
	s.logger.Info(ctx).Msgf("stopping %d producers", len(producers))

	p := pool.New().WithErrors()
	for _, rp := range producers {
		p.Go(func() error {
			return s.stop(ctx, rp)
		})
	}
	return p.Wait()
}

// Wait blocks until all producers stopped or the timeout is reached. It
// returns the errors of producers that stopped because of a failure.
func (s *Service) Wait(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var errs []error
	for _, pt := range s.tombs() {
		select {
		case <-pt.t.Dead():
			if err := pt.t.Err(); err != nil {
				errs = append(errs, cerrors.Errorf("producer %s: %w", pt.name, err))
			}
		case <-timer.C:
			return context.DeadlineExceeded
		}
	}
	return cerrors.Join(errs...)
}

type producerTomb struct {
	name string
	t    *tomb.Tomb
}

// tombs returns the tombs of all started producers, sorted by name.
func (s *Service) tombs() []producerTomb {
	s.m.Lock()
	defer s.m.Unlock()

	tombs := make([]producerTomb, 0, len(s.producers))
	for name, rp := range s.producers {
		rp.m.Lock()
		if rp.t != nil {
			tombs = append(tombs, producerTomb{name: name, t: rp.t})
		}
		rp.m.Unlock()
	}
	sort.Slice(tombs, func(i, j int) bool { return tombs[i].name < tombs[j].name })
	return tombs
}

// Instance returns the current instance of a producer.
func (s *Service) Instance(name string) (*wrapper.Instance, error) {
	rp, err := s.get(name)
	if err != nil {
		return nil, err
	}
	inst := rp.current()
	if inst == nil {
		return nil, cerrors.Errorf("%q has no instance: %w", name, ErrProducerNotFound)
	}
	return inst, nil
}

// Sink returns the delivery sink of the current instance of a producer. A
// restarted producer publishes into a new sink.
func (s *Service) Sink(name string) (*sink.Sink, error) {
	inst, err := s.Instance(name)
	if err != nil {
		return nil, err
	}
	return inst.Sink(), nil
}

func (s *Service) Status(name string) (wrapper.Status, error) {
	inst, err := s.Instance(name)
	if err != nil {
		return 0, err
	}
	return inst.Status(), nil
}

// Producers returns the names of all deployed producers, sorted.
func (s *Service) Producers() []string {
	s.m.Lock()
	defer s.m.Unlock()
	names := make([]string, 0, len(s.producers))
	for name := range s.producers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) get(name string) (*runnableProducer, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rp, ok := s.producers[name]
	if !ok {
		return nil, cerrors.Errorf("%q: %w", name, ErrProducerNotFound)
	}
	return rp, nil
}

func (s *Service) notify(name string, err error) {
	if err == nil {
		return
	}
	s.hm.Lock()
	handlers := append([]FailureHandler(nil), s.handlers...)
	s.hm.Unlock()

	e := FailureEvent{
		Producer: name,
		Error:    err,
	}
	for _, handler := range handlers {
		handler(e)
	}
}
