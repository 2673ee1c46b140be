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

package record

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

var (
	// ErrInvalidSchema is returned when a schema is empty or contains
	// duplicate, unnamed or untyped fields.
	ErrInvalidSchema = cerrors.New("invalid schema")
	// ErrSchemaMismatch is returned when a record does not conform to the
	// schema of the producer publishing it.
	ErrSchemaMismatch = cerrors.New("record does not match schema")
)

// Field is a named, typed column of a schema. Names are stored in lower case.
type Field struct {
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// Schema is the ordered, immutable list of fields every record of a producer
// carries. The zero value is an empty schema which is never valid for a
// producer.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates the fields and returns a schema. Field names are
// normalized to lower case and must be unique after normalization.
func NewSchema(fields ...Field) (Schema, error) {
	if len(fields) == 0 {
		return Schema{}, cerrors.Errorf("no fields: %w", ErrInvalidSchema)
	}
	s := Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		f.Name = strings.ToLower(strings.TrimSpace(f.Name))
		switch {
		case f.Name == "":
			return Schema{}, cerrors.Errorf("field %d has no name: %w", i, ErrInvalidSchema)
		case !f.Type.IsValid():
			return Schema{}, cerrors.Errorf("field %q has no valid type: %w", f.Name, ErrInvalidSchema)
		}
		if _, dup := s.index[f.Name]; dup {
			return Schema{}, cerrors.Errorf("duplicate field %q: %w", f.Name, ErrInvalidSchema)
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema for schemas known to be valid, it panics on error.
func MustSchema(fields ...Field) Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema parses the compact form "name:type,name:type".
func ParseSchema(s string) (Schema, error) {
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, typ, ok := strings.Cut(part, ":")
		if !ok {
			return Schema{}, cerrors.Errorf("expected name:type, got %q: %w", part, ErrInvalidSchema)
		}
		t, err := ParseType(typ)
		if err != nil {
			return Schema{}, cerrors.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Type: t})
	}
	return NewSchema(fields...)
}

// Fields returns a copy of the fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s Schema) Len() int {
	return len(s.fields)
}

func (s Schema) IsZero() bool {
	return len(s.fields) == 0
}

// Field looks up a field by name, case-insensitively.
func (s Schema) Field(name string) (Field, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Equal reports whether both schemas have the same field names and types in
// the same order. Descriptions and units are ignored.
func (s Schema) Equal(other Schema) bool {
	if len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if f.Name != other.fields[i].Name || f.Type != other.fields[i].Type {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Name + ":" + f.Type.String()
	}
	return strings.Join(parts, ",")
}

// Validate checks that r carries exactly the fields of the schema with values
// of the matching Go types. The returned error wraps ErrSchemaMismatch and
// lists every missing, extra and mistyped field.
func (s Schema) Validate(r Record) error {
	if s.IsZero() {
		return cerrors.Errorf("producer has no schema: %w", ErrSchemaMismatch)
	}

	var problems []string
	seen := make(map[string]string, len(r.Fields))
	for name, v := range r.Fields {
		lower := strings.ToLower(name)
		if prev, dup := seen[lower]; dup {
			problems = append(problems, "duplicate field "+quote(prev)+" and "+quote(name))
			continue
		}
		seen[lower] = name

		f, ok := s.Field(lower)
		if !ok {
			problems = append(problems, "extra field "+quote(name))
			continue
		}
		if !f.Type.Accepts(v) {
			problems = append(problems, "field "+quote(f.Name)+" expects "+f.Type.String()+
				", got "+typeOf(v))
		}
	}
	for _, f := range s.fields {
		if _, ok := seen[f.Name]; !ok {
			problems = append(problems, "missing field "+quote(f.Name))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return cerrors.Errorf("%s: %w", strings.Join(problems, "; "), ErrSchemaMismatch)
}

func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		*s = Schema{}
		return nil
	}
	parsed, err := NewSchema(fields...)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}
