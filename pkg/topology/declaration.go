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

// Package topology turns producer declarations into a validated dependency
// graph and a deployment order.
package topology

import (
	"fmt"
	"slices"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/record"
)

var (
	// ErrSchemaConflict is returned when a producer is declared again with
	// a different schema.
	ErrSchemaConflict = cerrors.New("conflicting schema")
	// ErrWrapperConflict is returned when a producer is declared again with
	// a different wrapper.
	ErrWrapperConflict = cerrors.New("conflicting wrapper")
	ErrSelfDependency  = cerrors.New("producer depends on itself")
	ErrDuplicateDep    = cerrors.New("dependency declared twice")
)

// Declaration declares a producer and the producers it depends on. A
// declaration without a wrapper only wires the graph, its node is deployed
// by somebody else.
type Declaration struct {
	Name      string            `json:"name"`
	Wrapper   string            `json:"wrapper,omitempty"`
	Settings  map[string]string `json:"settings,omitempty"`
	Schema    record.Schema     `json:"schema"`
	DependsOn []string          `json:"dependsOn,omitempty"`
}

// Validate checks the declaration on its own, without looking at the graph.
func (d Declaration) Validate() error {
	if d.Name == "" {
		return cerrors.Errorf("producer name: %w", cerrors.ErrEmptyID)
	}
	seen := make(map[string]bool, len(d.DependsOn))
	for _, dep := range d.DependsOn {
		switch {
		case dep == "":
			return cerrors.Errorf("dependency name: %w", cerrors.ErrEmptyID)
		case dep == d.Name:
			return cerrors.Errorf("%q: %w", dep, ErrSelfDependency)
		case seen[dep]:
			return cerrors.Errorf("%q: %w", dep, ErrDuplicateDep)
		}
		seen[dep] = true
	}
	return nil
}

// Deployable reports whether a wrapper needs to be started for the
// declaration.
func (d Declaration) Deployable() bool {
	return d.Wrapper != ""
}

func (d Declaration) clone() Declaration {
	out := d
	if d.Settings != nil {
		out.Settings = make(map[string]string, len(d.Settings))
		for k, v := range d.Settings {
			out.Settings[k] = v
		}
	}
	out.DependsOn = slices.Clone(d.DependsOn)
	return out
}

// merge combines a re-declaration of the same producer with d.
func (d Declaration) merge(other Declaration) (Declaration, error) {
	out := d.clone()
	switch {
	case out.Schema.IsZero():
		out.Schema = other.Schema
	case !other.Schema.IsZero() && !out.Schema.Equal(other.Schema):
		return Declaration{}, cerrors.Errorf("declared %s, previously %s: %w", other.Schema, out.Schema, ErrSchemaConflict)
	}
	switch {
	case out.Wrapper == "":
		out.Wrapper = other.Wrapper
		out.Settings = other.clone().Settings
	case other.Wrapper != "" && other.Wrapper != out.Wrapper:
		return Declaration{}, cerrors.Errorf("declared %q, previously %q: %w", other.Wrapper, out.Wrapper, ErrWrapperConflict)
	}
	out.DependsOn = append(out.DependsOn, other.DependsOn...)
	return out, nil
}

// ConfigError is a failure to apply a single declaration.
type ConfigError struct {
	Declaration string
	Err         error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid declaration %q: %v", e.Declaration, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
