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

// Package yaml loads topology declarations from YAML files.
package yaml

import (
	"context"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/conduitio/yaml/v3"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/topology"
)

// SupportedVersions is the range of configuration versions this parser
// understands.
const SupportedVersions = "^1.0"

var (
	ErrUnsupportedVersion = cerrors.New("unsupported configuration version")
	ErrDuplicateProducer  = cerrors.New("duplicate producer")
)

type Parser struct {
	logger     log.CtxLogger
	constraint *semver.Constraints
}

func NewParser(logger log.CtxLogger) *Parser {
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		panic(cerrors.Errorf("invalid version constraint: %w", err))
	}
	return &Parser{
		logger:     logger.WithComponent("yaml.Parser"),
		constraint: c,
	}
}

// ParseFile parses the topology file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]topology.Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerrors.Errorf("could not open topology file: %w", err)
	}
	defer f.Close()

	decls, err := p.Parse(ctx, f)
	if err != nil {
		return nil, cerrors.Errorf("%s: %w", path, err)
	}
	p.logger.Debug(ctx).
		Str(log.FilepathField, path).
		Int("producers", len(decls)).
		Msg("topology file parsed")
	return decls, nil
}

func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]topology.Declaration, error) {
	config, err := p.ParseConfiguration(ctx, reader)
	if err != nil {
		return nil, err
	}
	return config.ToDeclarations()
}

// ParseConfiguration decodes all documents in reader and merges them into a
// single configuration. Unknown fields are errors. Strings may reference
// environment variables as $VAR or ${VAR}.
func (p *Parser) ParseConfiguration(ctx context.Context, reader io.Reader) (Configuration, error) {
	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	dec.WithHook(multiDecoderHook(
		envDecoderHook, // replace environment variables with their values
	))

	var configs []Configuration
	for {
		var config Configuration
		err := dec.Decode(&config)
		if err != nil {
			// we reached the end of the document
			if cerrors.Is(err, io.EOF) {
				break
			}
			return Configuration{}, cerrors.Errorf("parsing error: %w", err)
		}
		if err := p.checkVersion(config.Version); err != nil {
			return Configuration{}, err
		}
		configs = append(configs, config)
	}

	out, err := p.mergeConfigurations(configs)
	if err != nil {
		return Configuration{}, err
	}
	p.logger.Trace(ctx).Int("documents", len(configs)).Msg("configuration decoded")
	return out, nil
}

func (p *Parser) checkVersion(v string) error {
	if v == "" {
		return cerrors.Errorf("version is required: %w", ErrUnsupportedVersion)
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return cerrors.Errorf("version %q: %w", v, ErrUnsupportedVersion)
	}
	if !p.constraint.Check(version) {
		return cerrors.Errorf("version %q, expected %s: %w", v, SupportedVersions, ErrUnsupportedVersion)
	}
	return nil
}

// mergeConfigurations concatenates the producers of all documents, producer
// names must be unique across documents.
func (p *Parser) mergeConfigurations(in []Configuration) (Configuration, error) {
	if len(in) == 0 {
		return Configuration{}, nil
	}

	out := Configuration{Version: in[0].Version}
	seen := make(map[string]bool)
	for _, config := range in {
		for _, producer := range config.Producers {
			if seen[producer.Name] {
				return Configuration{}, cerrors.Errorf("%q: %w", producer.Name, ErrDuplicateProducer)
			}
			seen[producer.Name] = true
			out.Producers = append(out.Producers, producer)
		}
	}
	return out, nil
}
