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

// Package sink implements the delivery sink, the queue between one producer
// and the consumers of its records.
package sink

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/gsnio/gsn/pkg/foundation/cchan"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/metrics"
	"github.com/gsnio/gsn/pkg/foundation/metrics/measure"
	"github.com/gsnio/gsn/pkg/record"
)

var (
	ErrSinkFull   = cerrors.New("sink is full")
	ErrSinkClosed = cerrors.New("sink is closed")
)

// Sink is a FIFO queue of records. Records keep the order in which they were
// enqueued. It is safe for concurrent use by one writer and many readers,
// every record is delivered to exactly one reader.
type Sink struct {
	name string
	cfg  Config

	mu      sync.Mutex
	queue   deque.Deque[record.Record]
	dropped uint64
	closed  bool
	// enqueued and dequeued are closed and replaced to wake up waiting
	// readers and writers respectively.
	enqueued chan struct{}
	dequeued chan struct{}

	depth        metrics.Gauge
	droppedCount metrics.Counter
	rejected     metrics.LabeledCounter
}

// New creates a sink for the producer with the given name. The name is only
// used to label metrics.
func New(name string, cfg Config) *Sink {
	return &Sink{
		name:         name,
		cfg:          cfg,
		enqueued:     make(chan struct{}),
		dequeued:     make(chan struct{}),
		depth:        measure.SinkDepthGauge.WithValues(name),
		droppedCount: measure.SinkDroppedCount.WithValues(name),
		rejected:     measure.RejectedRecordsCount,
	}
}

func (s *Sink) Name() string {
	return s.name
}

func (s *Sink) Config() Config {
	return s.cfg
}

// Enqueue appends r to the sink. What happens if the sink is full depends on
// the configured Policy. Enqueue on a closed sink fails with ErrSinkClosed.
func (s *Sink) Enqueue(ctx context.Context, r record.Record) error {
	var deadline time.Time
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			s.rejected.WithValues(s.name, "closed").Inc()
			return ErrSinkClosed
		}
		if !s.full() {
			s.push(r)
			s.mu.Unlock()
			return nil
		}

		switch s.cfg.Policy {
		case PolicyDropOldest:
			s.queue.PopFront()
			s.dropped++
			s.droppedCount.Inc()
			s.push(r)
			s.mu.Unlock()
			return nil
		case PolicyBlock:
			wait := s.dequeued
			s.mu.Unlock()
			if deadline.IsZero() {
				deadline = time.Now().Add(s.cfg.BlockTimeout)
			}
			if err := s.waitForRoom(ctx, wait, deadline); err != nil {
				return err
			}
		default:
			s.mu.Unlock()
			s.rejected.WithValues(s.name, "full").Inc()
			return ErrSinkFull
		}
	}
}

func (s *Sink) waitForRoom(ctx context.Context, wait chan struct{}, deadline time.Time) error {
	_, _, err := cchan.Chan[struct{}](wait).RecvTimeout(ctx, time.Until(deadline))
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		s.rejected.WithValues(s.name, "full").Inc()
		return cerrors.Errorf("waited %v: %w", s.cfg.BlockTimeout, ErrSinkFull)
	}
}

// Dequeue removes and returns the oldest record. It blocks until a record is
// available or ctx is done. Once the sink is closed and drained it returns
// ErrSinkClosed.
func (s *Sink) Dequeue(ctx context.Context) (record.Record, error) {
	for {
		s.mu.Lock()
		if s.queue.Len() > 0 {
			r := s.pop()
			s.mu.Unlock()
			return r, nil
		}
		if s.closed {
			s.mu.Unlock()
			return record.Record{}, ErrSinkClosed
		}
		wait := s.enqueued
		s.mu.Unlock()

		if _, _, err := cchan.Chan[struct{}](wait).Recv(ctx); err != nil {
			return record.Record{}, err
		}
	}
}

// TryDequeue removes and returns the oldest record without blocking. The
// second return value is false if the sink is empty.
func (s *Sink) TryDequeue() (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return record.Record{}, false
	}
	return s.pop(), true
}

// Len returns the number of queued records.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Dropped returns the number of records evicted by PolicyDropOldest.
func (s *Sink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops accepting records and wakes up all waiting readers and writers.
// Records already queued can still be dequeued. Close is idempotent.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.enqueued)
	close(s.dequeued)
}

func (s *Sink) full() bool {
	return s.cfg.Capacity > 0 && s.queue.Len() >= s.cfg.Capacity
}

// push appends r and wakes up readers, the caller must hold the lock.
func (s *Sink) push(r record.Record) {
	s.queue.PushBack(r)
	s.depth.Set(float64(s.queue.Len()))
	close(s.enqueued)
	s.enqueued = make(chan struct{})
}

// pop removes the front record and wakes up writers, the caller must hold the
// lock.
func (s *Sink) pop() record.Record {
	r := s.queue.PopFront()
	s.depth.Set(float64(s.queue.Len()))
	if !s.closed {
		close(s.dequeued)
		s.dequeued = make(chan struct{})
	}
	return r
}
