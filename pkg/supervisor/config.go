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

package supervisor

import (
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/sink"
	"github.com/jpillora/backoff"
)

// Config configures the supervisor.
type Config struct {
	// Sink is used for the delivery sink of every producer.
	Sink    sink.Config
	Restart RestartPolicy
}

// RestartPolicy decides if and when a producer that failed with a source
// failure is created and initialized again.
type RestartPolicy struct {
	Enabled bool
	// MaxRetries is the number of restarts after which the producer stays
	// failed, 0 means no limit.
	MaxRetries    int
	MinDelay      time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultConfig() Config {
	return Config{
		Sink: sink.DefaultConfig(),
		Restart: RestartPolicy{
			Enabled:       false,
			MaxRetries:    5,
			MinDelay:      time.Second,
			MaxDelay:      10 * time.Minute,
			BackoffFactor: 2,
		},
	}
}

func (c Config) Validate() error {
	if err := c.Sink.Validate(); err != nil {
		return cerrors.Errorf("invalid sink config: %w", err)
	}
	if !c.Restart.Enabled {
		return nil
	}
	switch {
	case c.Restart.MaxRetries < 0:
		return cerrors.New("restart max retries must not be negative")
	case c.Restart.MinDelay <= 0:
		return cerrors.New("restart min delay must be positive")
	case c.Restart.MaxDelay < c.Restart.MinDelay:
		return cerrors.New("restart max delay must not be lower than min delay")
	case c.Restart.BackoffFactor < 1:
		return cerrors.New("restart backoff factor must be at least 1")
	}
	return nil
}

func (p RestartPolicy) backoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    p.MinDelay,
		Max:    p.MaxDelay,
		Factor: p.BackoffFactor,
		Jitter: true,
	}
}

// exhausted reports whether the producer was restarted attempts times
// already and may not be restarted again.
func (p RestartPolicy) exhausted(attempts int) bool {
	return !p.Enabled || (p.MaxRetries > 0 && attempts >= p.MaxRetries)
}

// recovered reports whether an instance that ran for d before failing was
// healthy long enough to restart the backoff from the minimum delay.
func (p RestartPolicy) recovered(d time.Duration) bool {
	return p.Enabled && d >= p.MaxDelay
}
