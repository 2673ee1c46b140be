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

// Package root contains the gsn command line.
package root

import (
	"fmt"

	"github.com/gsnio/gsn/pkg/gsn"
	"github.com/spf13/cobra"
)

// RootCommand holds the configuration shared by all sub-commands. It is
// populated from flags, GSN_* environment variables and the config file in
// that order of precedence.
type RootCommand struct {
	cfg        gsn.Config
	configPath string
	version    bool
}

// New returns the gsn command with all sub-commands attached.
func New() *cobra.Command {
	c := &RootCommand{cfg: gsn.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "gsn",
		Short: "GSN data acquisition runtime",
		Long: `GSN deploys a topology of data producers (wrappers) described in a YAML file,
validates their dependencies and runs them until it is interrupted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.parseConfig(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.version {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), gsn.Version(true))
				return nil
			}
			return cmd.Help()
		},
	}

	c.registerFlags(cmd)
	cmd.Flags().BoolVarP(&c.version, "version", "v", false, "show current GSN version")

	cmd.AddCommand(
		newRunCommand(c),
		newValidateCommand(c),
		newVersionCommand(),
	)
	return cmd
}

// Config returns the parsed configuration.
func (c *RootCommand) Config() gsn.Config {
	return c.cfg
}
