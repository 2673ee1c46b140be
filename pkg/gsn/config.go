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

package gsn

import (
	"os"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/sink"
	"github.com/gsnio/gsn/pkg/supervisor"
	"github.com/gsnio/gsn/pkg/wrapper"
	"github.com/gsnio/gsn/pkg/wrapper/builtin"
	"github.com/rs/zerolog"
)

const (
	DBTypeBadger   = "badger"
	DBTypeSQLite   = "sqlite"
	DBTypeInMemory = "inmemory"
)

// Config holds all configurable values of a GSN runtime. Keys follow the
// dotted flag names, e.g. "sink.block-timeout".
type Config struct {
	DB struct {
		// When Driver is specified it takes precedence over other DB related
		// fields.
		Driver database.DB `mapstructure:"-"`

		Type   string
		Badger struct {
			Path string
		}
		SQLite struct {
			Path  string
			Table string
		}
	}

	Log struct {
		Level  string
		Format string
	}

	Metrics struct {
		// Address of the HTTP server exposing /metrics, empty disables it.
		Address string
	}

	Topology struct {
		// Path of the YAML topology file. If empty, the topology stored in
		// the DB by the previous run is deployed.
		Path string
		// ExitOnError stops the runtime when a producer fails to initialize
		// or fails while running.
		ExitOnError bool `mapstructure:"exit-on-error"`
	}

	Sink struct {
		Capacity     int
		Policy       string
		BlockTimeout time.Duration `mapstructure:"block-timeout"`
	}

	Restart struct {
		Enabled       bool
		MaxRetries    int           `mapstructure:"max-retries"`
		MinDelay      time.Duration `mapstructure:"min-delay"`
		MaxDelay      time.Duration `mapstructure:"max-delay"`
		BackoffFactor float64       `mapstructure:"backoff-factor"`
	}

	// Registry resolves wrapper kinds, it defaults to the builtin wrappers.
	Registry *wrapper.Registry `mapstructure:"-"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.DB.Type = DBTypeBadger
	cfg.DB.Badger.Path = "gsn.db"
	cfg.DB.SQLite.Path = "gsn.sqlite"
	cfg.DB.SQLite.Table = "gsn_kv_store"
	cfg.Log.Level = "info"
	cfg.Log.Format = "cli"
	cfg.Metrics.Address = ":8090"

	sinkCfg := sink.DefaultConfig()
	cfg.Sink.Capacity = sinkCfg.Capacity
	cfg.Sink.Policy = sinkCfg.Policy.String()
	cfg.Sink.BlockTimeout = sinkCfg.BlockTimeout

	restart := supervisor.DefaultConfig().Restart
	cfg.Restart.Enabled = restart.Enabled
	cfg.Restart.MaxRetries = restart.MaxRetries
	cfg.Restart.MinDelay = restart.MinDelay
	cfg.Restart.MaxDelay = restart.MaxDelay
	cfg.Restart.BackoffFactor = restart.BackoffFactor

	cfg.Registry = builtin.DefaultRegistry()
	return cfg
}

func (c Config) Validate() error {
	if c.DB.Driver == nil {
		switch c.DB.Type {
		case DBTypeBadger:
			if c.DB.Badger.Path == "" {
				return requiredConfigFieldErr("db.badger.path")
			}
		case DBTypeSQLite:
			if c.DB.SQLite.Path == "" {
				return requiredConfigFieldErr("db.sqlite.path")
			}
			if c.DB.SQLite.Table == "" {
				return requiredConfigFieldErr("db.sqlite.table")
			}
		case DBTypeInMemory:
			// all good
		default:
			return invalidConfigFieldErr("db.type")
		}
	}

	if c.Log.Level == "" {
		return requiredConfigFieldErr("log.level")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return invalidConfigFieldErr("log.level")
	}
	if c.Log.Format == "" {
		return requiredConfigFieldErr("log.format")
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return invalidConfigFieldErr("log.format")
	}

	if c.Topology.Path != "" {
		if _, err := os.Stat(c.Topology.Path); err != nil {
			return invalidConfigFieldErr("topology.path")
		}
	}

	if c.Registry == nil {
		return requiredConfigFieldErr("registry")
	}

	sc, err := c.supervisorConfig()
	if err != nil {
		return invalidConfigFieldErr("sink.policy")
	}
	if err := sc.Validate(); err != nil {
		return cerrors.Errorf("invalid producer config: %w", err)
	}
	return nil
}

// supervisorConfig translates the flat sink and restart settings.
func (c Config) supervisorConfig() (supervisor.Config, error) {
	policy, err := sink.ParsePolicy(c.Sink.Policy)
	if err != nil {
		return supervisor.Config{}, err
	}
	return supervisor.Config{
		Sink: sink.Config{
			Capacity:     c.Sink.Capacity,
			Policy:       policy,
			BlockTimeout: c.Sink.BlockTimeout,
		},
		Restart: supervisor.RestartPolicy{
			Enabled:       c.Restart.Enabled,
			MaxRetries:    c.Restart.MaxRetries,
			MinDelay:      c.Restart.MinDelay,
			MaxDelay:      c.Restart.MaxDelay,
			BackoffFactor: c.Restart.BackoffFactor,
		},
	}, nil
}

func invalidConfigFieldErr(name string) error {
	return cerrors.Errorf("%q config value is invalid", name)
}

func requiredConfigFieldErr(name string) error {
	return cerrors.Errorf("%q config value is required", name)
}
