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
	"os"
	"strings"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "GSN"
	DefaultConfigPath = "./gsn.yaml"
)

// registerFlags declares one persistent flag per configuration key. The flag
// names double as keys in the config file and, upper-cased with dots and
// dashes replaced by underscores, as environment variables.
func (c *RootCommand) registerFlags(cmd *cobra.Command) {
	def := c.cfg
	flags := cmd.PersistentFlags()

	flags.StringVar(&c.configPath, "config.path", DefaultConfigPath, "global gsn configuration file")

	flags.String("db.type", def.DB.Type, "database type; accepts badger,sqlite,inmemory")
	flags.String("db.badger.path", def.DB.Badger.Path, "path to badger DB")
	flags.String("db.sqlite.path", def.DB.SQLite.Path, "path to the directory of the sqlite DB")
	flags.String("db.sqlite.table", def.DB.SQLite.Table, "sqlite table in which to store data (will be created if it does not exist)")

	flags.String("log.level", def.Log.Level, "sets logging level; accepts debug, info, warn, error, trace")
	flags.String("log.format", def.Log.Format, "sets the format of the logging; accepts json, cli")

	flags.String("metrics.address", def.Metrics.Address, "address for serving prometheus metrics, empty disables the server")

	flags.String("topology.path", def.Topology.Path, "path to the YAML topology file; if empty, the stored topology is deployed")
	flags.Bool("topology.exit-on-error", def.Topology.ExitOnError, "exit GSN if a producer fails to initialize or fails while running")

	flags.Int("sink.capacity", def.Sink.Capacity, "number of records buffered per producer, 0 means unbounded")
	flags.String("sink.policy", def.Sink.Policy, "what to do when a sink is full; accepts drop-oldest, reject, block")
	flags.Duration("sink.block-timeout", def.Sink.BlockTimeout, "how long a publish waits for room in a full sink with policy block")

	flags.Bool("restart.enabled", def.Restart.Enabled, "restart producers that failed while running")
	flags.Int("restart.max-retries", def.Restart.MaxRetries, "number of restarts after which a producer stays failed, 0 means no limit")
	flags.Duration("restart.min-delay", def.Restart.MinDelay, "delay before the first restart")
	flags.Duration("restart.max-delay", def.Restart.MaxDelay, "maximum delay between restarts")
	flags.Float64("restart.backoff-factor", def.Restart.BackoffFactor, "factor by which the restart delay grows")
}

func (c *RootCommand) parseConfig(flags *pflag.FlagSet) error {
	v := viper.New()

	if err := v.BindPFlags(flags); err != nil {
		return cerrors.Errorf("could not bind flags: %w", err)
	}

	// Read configuration from file, a missing default file is fine
	if c.configPath != "" {
		v.SetConfigFile(c.configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) || flags.Changed("config.path") {
				return cerrors.Errorf("could not read config file %q: %w", c.configPath, err)
			}
		}
	}

	// Set environment variable prefix and automatic mapping
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&c.cfg); err != nil {
		return cerrors.Errorf("unable to unmarshal the configuration: %w", err)
	}
	return nil
}
