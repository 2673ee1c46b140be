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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexeyco/simpletable"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/topology"
	"github.com/gsnio/gsn/pkg/topology/config/yaml"
	"github.com/spf13/cobra"
)

var ErrInvalidTopology = cerrors.New("topology is invalid")

func newValidateCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a topology file",
		Long: `Parses the topology file, checks the declarations and their dependencies and
prints the deployment order. Nothing is deployed.`,
		Example: "gsn validate --topology.path ./topology.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := root.cfg.Topology.Path
			if path == "" {
				return cerrors.New(`"topology.path" is required`)
			}

			ctx := cmd.Context()
			logger := log.Nop()
			decls, err := yaml.NewParser(logger).ParseFile(ctx, path)
			if err == nil {
				var topo *topology.Topology
				topo, err = topology.NewBuilder(logger).Build(ctx, decls)
				if err == nil {
					displayTopology(cmd.OutOrStdout(), topo)
					return nil
				}
			}

			displayErrors(cmd.ErrOrStderr(), err)
			return cerrors.Errorf("%s: %w", path, ErrInvalidTopology)
		},
	}
}

func displayTopology(out io.Writer, topo *topology.Topology) {
	table := simpletable.New()

	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "#"},
			{Align: simpletable.AlignCenter, Text: "NAME"},
			{Align: simpletable.AlignCenter, Text: "WRAPPER"},
			{Align: simpletable.AlignCenter, Text: "DEPENDS_ON"},
			{Align: simpletable.AlignCenter, Text: "OUTPUT_FORMAT"},
		},
	}

	for i, d := range topo.Declarations() {
		wrapper := d.Wrapper
		if wrapper == "" {
			wrapper = "-"
		}
		schema := "-"
		if !d.Schema.IsZero() {
			schema = d.Schema.String()
		}
		r := []*simpletable.Cell{
			{Align: simpletable.AlignRight, Text: strconv.Itoa(i + 1)},
			{Align: simpletable.AlignLeft, Text: d.Name},
			{Align: simpletable.AlignLeft, Text: wrapper},
			{Align: simpletable.AlignLeft, Text: strings.Join(topo.Dependencies(d.Name), ", ")},
			{Align: simpletable.AlignLeft, Text: schema},
		}
		table.Body.Cells = append(table.Body.Cells, r)
	}
	table.SetStyle(simpletable.StyleCompact)
	_, _ = fmt.Fprintln(out, table.String())
}

func displayErrors(out io.Writer, err error) {
	cerrors.ForEach(err, func(err error) {
		_, _ = fmt.Fprintf(out, "- %v\n", err)
	})
}
