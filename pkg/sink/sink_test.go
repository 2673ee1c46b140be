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

package sink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/matryer/is"
	"go.uber.org/goleak"
)

func rec(i int32) record.Record {
	return record.Record{
		Timestamp: time.Unix(int64(i), 0),
		Fields:    map[string]any{"data": i},
	}
}

func data(r record.Record) int32 {
	return r.Fields["data"].(int32)
}

func drain(t *testing.T, s *Sink) []int32 {
	var out []int32
	for {
		r, ok := s.TryDequeue()
		if !ok {
			return out
		}
		out = append(out, data(r))
	}
}

func TestSink_FIFO(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", Config{Capacity: 0})

	for i := int32(0); i < 100; i++ {
		is.NoErr(s.Enqueue(ctx, rec(i)))
	}
	is.Equal(s.Len(), 100)

	for i := int32(0); i < 100; i++ {
		r, err := s.Dequeue(ctx)
		is.NoErr(err)
		is.Equal(data(r), i)
	}
	is.Equal(s.Len(), 0)
}

func TestSink_DropOldest(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", Config{Capacity: 3, Policy: PolicyDropOldest})

	for i := int32(0); i < 5; i++ {
		is.NoErr(s.Enqueue(ctx, rec(i)))
	}
	is.Equal(s.Dropped(), uint64(2))
	is.Equal(drain(t, s), []int32{2, 3, 4})
}

func TestSink_Reject(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", Config{Capacity: 2, Policy: PolicyReject})

	is.NoErr(s.Enqueue(ctx, rec(0)))
	is.NoErr(s.Enqueue(ctx, rec(1)))
	err := s.Enqueue(ctx, rec(2))
	is.True(cerrors.Is(err, ErrSinkFull))
	is.Equal(s.Dropped(), uint64(0))
	is.Equal(drain(t, s), []int32{0, 1})
}

func TestSink_BlockTimeout(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", Config{Capacity: 1, Policy: PolicyBlock, BlockTimeout: 50 * time.Millisecond})

	is.NoErr(s.Enqueue(ctx, rec(0)))

	start := time.Now()
	err := s.Enqueue(ctx, rec(1))
	is.True(cerrors.Is(err, ErrSinkFull))
	is.True(time.Since(start) >= 50*time.Millisecond)
	is.Equal(drain(t, s), []int32{0})
}

func TestSink_BlockUntilRoom(t *testing.T) {
	defer goleak.VerifyNone(t)
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", Config{Capacity: 1, Policy: PolicyBlock, BlockTimeout: time.Second})

	is.NoErr(s.Enqueue(ctx, rec(0)))

	done := make(chan error)
	go func() { done <- s.Enqueue(ctx, rec(1)) }()

	time.Sleep(20 * time.Millisecond)
	r, err := s.Dequeue(ctx)
	is.NoErr(err)
	is.Equal(data(r), int32(0))

	is.NoErr(<-done)
	is.Equal(drain(t, s), []int32{1})
}

func TestSink_BlockCanceled(t *testing.T) {
	is := is.New(t)
	s := New("station-a", Config{Capacity: 1, Policy: PolicyBlock, BlockTimeout: time.Minute})
	is.NoErr(s.Enqueue(context.Background(), rec(0)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Enqueue(ctx, rec(1))
	is.Equal(err, context.DeadlineExceeded)
}

func TestSink_DequeueBlocksUntilEnqueue(t *testing.T) {
	defer goleak.VerifyNone(t)
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", DefaultConfig())

	got := make(chan record.Record)
	go func() {
		r, err := s.Dequeue(ctx)
		is.NoErr(err)
		got <- r
	}()

	time.Sleep(10 * time.Millisecond)
	is.NoErr(s.Enqueue(ctx, rec(7)))
	is.Equal(data(<-got), int32(7))
}

func TestSink_DequeueCanceled(t *testing.T) {
	is := is.New(t)
	s := New("station-a", DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Dequeue(ctx)
	is.Equal(err, context.Canceled)
}

func TestSink_Close(t *testing.T) {
	defer goleak.VerifyNone(t)
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", DefaultConfig())

	is.NoErr(s.Enqueue(ctx, rec(1)))

	waiting := make(chan error)
	go func() {
		// first dequeue gets the queued record, the second blocks until Close
		_, err := s.Dequeue(ctx)
		is.NoErr(err)
		_, err = s.Dequeue(ctx)
		waiting <- err
	}()

	time.Sleep(10 * time.Millisecond)
	s.Close()
	s.Close() // idempotent

	is.True(cerrors.Is(<-waiting, ErrSinkClosed))
	is.True(cerrors.Is(s.Enqueue(ctx, rec(2)), ErrSinkClosed))
}

func TestSink_CloseKeepsQueuedRecords(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := New("station-a", DefaultConfig())

	is.NoErr(s.Enqueue(ctx, rec(1)))
	is.NoErr(s.Enqueue(ctx, rec(2)))
	s.Close()

	is.Equal(drain(t, s), []int32{1, 2})
	_, err := s.Dequeue(ctx)
	is.True(cerrors.Is(err, ErrSinkClosed))
}

func TestSink_SingleWriterManyReaders(t *testing.T) {
	defer goleak.VerifyNone(t)
	is := is.New(t)
	ctx := context.Background()

	const (
		readers = 8
		total   = 2000
	)
	s := New("station-a", Config{Capacity: 16, Policy: PolicyBlock, BlockTimeout: 5 * time.Second})

	var mu sync.Mutex
	perReader := make([][]int32, readers)
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer wg.Done()
			for {
				r, err := s.Dequeue(ctx)
				if cerrors.Is(err, ErrSinkClosed) {
					return
				}
				is.NoErr(err)
				mu.Lock()
				perReader[i] = append(perReader[i], data(r))
				mu.Unlock()
			}
		}(i)
	}

	for i := int32(0); i < total; i++ {
		is.NoErr(s.Enqueue(ctx, rec(i)))
	}
	s.Close()
	wg.Wait()

	seen := make(map[int32]bool, total)
	for _, got := range perReader {
		// every reader observes records in emission order
		for j := 1; j < len(got); j++ {
			is.True(got[j-1] < got[j])
		}
		for _, v := range got {
			is.True(!seen[v]) // delivered once
			seen[v] = true
		}
	}
	is.Equal(len(seen), total)
}

func TestConfig_Validate(t *testing.T) {
	is := is.New(t)

	is.NoErr(DefaultConfig().Validate())
	is.True(Config{Capacity: -1}.Validate() != nil)
	is.True(Config{Policy: Policy(9)}.Validate() != nil)
	is.True(Config{Policy: PolicyBlock}.Validate() != nil)
}

func TestParsePolicy(t *testing.T) {
	is := is.New(t)

	for _, p := range []Policy{PolicyDropOldest, PolicyReject, PolicyBlock} {
		got, err := ParsePolicy(p.String())
		is.NoErr(err)
		is.Equal(got, p)
	}
	_, err := ParsePolicy("spill")
	is.True(err != nil)
}
