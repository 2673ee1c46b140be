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

package cchan

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestChan_Recv_Value(t *testing.T) {
	is := is.New(t)

	c := make(chan int, 1)
	c <- 7

	got, ok, err := Chan[int](c).Recv(context.Background())
	is.NoErr(err)
	is.True(ok)
	is.Equal(got, 7)
}

func TestChan_Recv_Closed(t *testing.T) {
	is := is.New(t)

	c := make(chan int)
	close(c)

	got, ok, err := Chan[int](c).Recv(context.Background())
	is.NoErr(err)
	is.True(!ok)
	is.Equal(got, 0)
}

func TestChan_Recv_Canceled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := Chan[int](make(chan int)).Recv(ctx)
	is.Equal(err, context.Canceled)
	is.True(!ok)
}

func TestChan_RecvTimeout(t *testing.T) {
	is := is.New(t)

	start := time.Now()
	_, _, err := Chan[int](make(chan int)).RecvTimeout(context.Background(), 50*time.Millisecond)
	is.Equal(err, context.DeadlineExceeded)
	is.True(time.Since(start) >= 50*time.Millisecond)
}
