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

package csync

import (
	"context"
	"sync"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cchan"
)

// WaitGroup is a sync.WaitGroup whose Wait can be abandoned through a context.
type WaitGroup sync.WaitGroup

func (wg *WaitGroup) Add(delta int) {
	(*sync.WaitGroup)(wg).Add(delta)
}

func (wg *WaitGroup) Done() {
	(*sync.WaitGroup)(wg).Done()
}

// Wait blocks until the counter drops to zero or ctx is done. In the latter
// case the context error is returned and the counter is left untouched.
func (wg *WaitGroup) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		(*sync.WaitGroup)(wg).Wait()
	}()
	_, _, err := cchan.Chan[struct{}](done).Recv(ctx)
	return err
}

// WaitTimeout is Wait with an upper bound on the waiting time.
func (wg *WaitGroup) WaitTimeout(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return wg.Wait(ctx)
}
