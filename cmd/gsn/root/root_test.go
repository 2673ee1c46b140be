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

package root

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/gsn"
	"github.com/matryer/is"
	"github.com/spf13/cobra"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := New()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config.path", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommandFlags(t *testing.T) {
	is := is.New(t)

	expectedFlags := []struct {
		longName  string
		shortName string
	}{
		{longName: "config.path"},
		{longName: "db.type"},
		{longName: "db.badger.path"},
		{longName: "db.sqlite.path"},
		{longName: "db.sqlite.table"},
		{longName: "log.level"},
		{longName: "log.format"},
		{longName: "metrics.address"},
		{longName: "topology.path"},
		{longName: "topology.exit-on-error"},
		{longName: "sink.capacity"},
		{longName: "sink.policy"},
		{longName: "sink.block-timeout"},
		{longName: "restart.enabled"},
		{longName: "restart.max-retries"},
		{longName: "restart.min-delay"},
		{longName: "restart.max-delay"},
		{longName: "restart.backoff-factor"},
	}

	cmd := New()
	for _, ef := range expectedFlags {
		f := cmd.PersistentFlags().Lookup(ef.longName)
		is.True(f != nil) // flag not found
		if f != nil {
			is.Equal(ef.shortName, f.Shorthand)
		}
	}

	v := cmd.Flags().Lookup("version")
	is.True(v != nil)
	is.Equal(v.Shorthand, "v")
}

func TestRootCommand_parseConfig(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(is *is.I, cfg gsn.Config)
	}{{
		name: "defaults without config file",
		args: []string{"--config.path", ""},
		check: func(is *is.I, cfg gsn.Config) {
			want := gsn.DefaultConfig()
			is.Equal(cfg.DB.Type, want.DB.Type)
			is.Equal(cfg.Log.Level, want.Log.Level)
			is.Equal(cfg.Sink.Capacity, want.Sink.Capacity)
			is.Equal(cfg.Sink.Policy, want.Sink.Policy)
			is.Equal(cfg.Restart.Enabled, want.Restart.Enabled)
			is.Equal(cfg.Restart.MaxDelay, want.Restart.MaxDelay)
			is.True(cfg.Registry != nil)
		},
	}, {
		name: "config file",
		args: []string{"--config.path", "testdata/gsn.yaml"},
		check: func(is *is.I, cfg gsn.Config) {
			is.Equal(cfg.DB.Type, gsn.DBTypeSQLite)
			is.Equal(cfg.DB.SQLite.Table, "from_file")
			is.Equal(cfg.DB.SQLite.Path, gsn.DefaultConfig().DB.SQLite.Path)
			is.Equal(cfg.Log.Level, "debug")
			is.Equal(cfg.Sink.Capacity, 10)
			is.Equal(cfg.Sink.BlockTimeout, 3*time.Second)
			is.Equal(cfg.Restart.Enabled, true)
			is.Equal(cfg.Restart.MaxRetries, 7)
		},
	}, {
		name: "env overrides config file",
		args: []string{"--config.path", "testdata/gsn.yaml"},
		env: map[string]string{
			"GSN_LOG_LEVEL":           "warn",
			"GSN_SINK_POLICY":         "reject",
			"GSN_RESTART_MAX_RETRIES": "3",
		},
		check: func(is *is.I, cfg gsn.Config) {
			is.Equal(cfg.Log.Level, "warn")
			is.Equal(cfg.Sink.Policy, "reject")
			is.Equal(cfg.Restart.MaxRetries, 3)
			is.Equal(cfg.Sink.Capacity, 10)
		},
	}, {
		name: "flags override env and config file",
		args: []string{
			"--config.path", "testdata/gsn.yaml",
			"--log.level", "error",
			"--db.type", "inmemory",
			"--restart.backoff-factor", "1.5",
			"--restart.min-delay", "250ms",
		},
		env: map[string]string{"GSN_LOG_LEVEL": "warn"},
		check: func(is *is.I, cfg gsn.Config) {
			is.Equal(cfg.Log.Level, "error")
			is.Equal(cfg.DB.Type, gsn.DBTypeInMemory)
			is.Equal(cfg.Restart.BackoffFactor, 1.5)
			is.Equal(cfg.Restart.MinDelay, 250*time.Millisecond)
		},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			c := &RootCommand{cfg: gsn.DefaultConfig()}
			cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
			c.registerFlags(cmd)
			cmd.SetArgs(tc.args)
			is.NoErr(cmd.Execute())

			is.NoErr(c.parseConfig(cmd.Flags()))
			tc.check(is, c.Config())
		})
	}
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	is := is.New(t)

	c := &RootCommand{cfg: gsn.DefaultConfig()}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	c.registerFlags(cmd)

	// the default path may be missing
	cmd.SetArgs([]string{})
	is.NoErr(cmd.Execute())
	c.configPath = "testdata/does-not-exist.yaml"
	is.NoErr(c.parseConfig(cmd.Flags()))

	// an explicitly configured path may not
	cmd.SetArgs([]string{"--config.path", "testdata/does-not-exist.yaml"})
	is.NoErr(cmd.Execute())
	is.True(c.parseConfig(cmd.Flags()) != nil)
}

func TestValidateCommand(t *testing.T) {
	is := is.New(t)

	stdout, _, err := execute(t, "validate", "--topology.path", "testdata/topology.yaml")
	is.NoErr(err)

	idx := func(s string) int {
		i := strings.Index(stdout, s)
		is.True(i >= 0) // missing in output
		return i
	}
	// deployment order
	is.True(idx("station-a") < idx("station-b"))
	is.True(idx("station-b") < idx("avg"))
	is.True(strings.Contains(stdout, "data:integer"))
	is.True(strings.Contains(stdout, "station-a, station-b"))
}

func TestValidateCommand_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		args      []string
		wantErr   error
		wantInErr string
	}{{
		name:      "cycle",
		args:      []string{"validate", "--topology.path", "testdata/cycle.yaml"},
		wantErr:   ErrInvalidTopology,
		wantInErr: "cycle detected: a -> b -> a",
	}, {
		name:      "missing file",
		args:      []string{"validate", "--topology.path", "testdata/does-not-exist.yaml"},
		wantErr:   ErrInvalidTopology,
		wantInErr: "could not open topology file",
	}, {
		name: "missing path",
		args: []string{"validate"},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			stdout, stderr, err := execute(t, tc.args...)
			is.True(err != nil)
			is.Equal(stdout, "")
			if tc.wantErr != nil {
				is.True(cerrors.Is(err, tc.wantErr))
			}
			is.True(strings.Contains(stderr, tc.wantInErr))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	is := is.New(t)

	stdout, _, err := execute(t, "version")
	is.NoErr(err)
	is.Equal(strings.TrimSpace(stdout), gsn.Version(true))

	stdout, _, err = execute(t, "--version")
	is.NoErr(err)
	is.Equal(strings.TrimSpace(stdout), gsn.Version(true))
}
