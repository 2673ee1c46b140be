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

package yaml

import (
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/multierror"
	"github.com/gsnio/gsn/pkg/record"
	"github.com/gsnio/gsn/pkg/topology"
)

type Configuration struct {
	Version   string     `yaml:"version"`
	Producers []Producer `yaml:"producers"`
}

type Producer struct {
	Name         string            `yaml:"name"`
	Wrapper      string            `yaml:"wrapper"`
	Settings     map[string]string `yaml:"settings"`
	OutputFormat []Field           `yaml:"output-format"`
	DependsOn    []string          `yaml:"depends-on"`
}

type Field struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
}

// ToDeclarations converts the configuration into topology declarations. All
// invalid producers are reported.
func (c Configuration) ToDeclarations() ([]topology.Declaration, error) {
	var errs error
	out := make([]topology.Declaration, 0, len(c.Producers))
	for i, p := range c.Producers {
		d, err := p.ToDeclaration()
		if err != nil {
			errs = multierror.Append(errs, cerrors.Errorf("producers[%d] %q: %w", i, p.Name, err))
			continue
		}
		out = append(out, d)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func (p Producer) ToDeclaration() (topology.Declaration, error) {
	schema, err := p.schema()
	if err != nil {
		return topology.Declaration{}, err
	}
	return topology.Declaration{
		Name:      p.Name,
		Wrapper:   p.Wrapper,
		Settings:  p.Settings,
		Schema:    schema,
		DependsOn: p.DependsOn,
	}, nil
}

func (p Producer) schema() (record.Schema, error) {
	if len(p.OutputFormat) == 0 {
		return record.Schema{}, nil
	}
	fields := make([]record.Field, len(p.OutputFormat))
	for i, f := range p.OutputFormat {
		typ, err := record.ParseType(f.Type)
		if err != nil {
			return record.Schema{}, cerrors.Errorf("output-format field %q: %w", f.Name, err)
		}
		fields[i] = record.Field{
			Name:        f.Name,
			Type:        typ,
			Description: f.Description,
			Unit:        f.Unit,
		}
	}
	return record.NewSchema(fields...)
}
