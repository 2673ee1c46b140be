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
	"context"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/gsn"
	"github.com/spf13/cobra"
)

func newRunCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run GSN",
		Long: `Deploys the topology and runs all producers until GSN is interrupted. The
topology is read from --topology.path, or from the DB if no path is given.`,
		Example: "gsn run --topology.path ./topology.yaml --db.type inmemory",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := gsn.NewRuntime(root.cfg)
			if err != nil {
				return cerrors.Errorf("failed to set up gsn runtime: %w", err)
			}

			err = runtime.Run(cmd.Context())
			if err != nil && !cerrors.Is(err, context.Canceled) {
				return cerrors.Errorf("gsn runtime error: %w", err)
			}
			return nil
		},
	}
}
