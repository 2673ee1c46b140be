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
	"fmt"
	"math"
	"strings"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
)

// Type is the primitive type of a schema field.
type Type int

const (
	TypeTinyInt Type = iota + 1
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeDouble
	TypeFloat
	TypeVarchar
	TypeChar
	TypeBinary
	TypeBoolean
)

var typeNames = map[Type]string{
	TypeTinyInt:  "tinyint",
	TypeSmallInt: "smallint",
	TypeInteger:  "integer",
	TypeBigInt:   "bigint",
	TypeDouble:   "double",
	TypeFloat:    "float",
	TypeVarchar:  "varchar",
	TypeChar:     "char",
	TypeBinary:   "binary",
	TypeBoolean:  "boolean",
}

var typeAliases = map[string]Type{
	"int":     TypeInteger,
	"long":    TypeBigInt,
	"short":   TypeSmallInt,
	"byte":    TypeTinyInt,
	"real":    TypeFloat,
	"numeric": TypeDouble,
	"string":  TypeVarchar,
	"text":    TypeVarchar,
	"bytes":   TypeBinary,
	"blob":    TypeBinary,
	"bool":    TypeBoolean,
}

// ErrUnknownType is returned when parsing a type name that is not supported.
var ErrUnknownType = cerrors.New("unknown field type")

// ParseType converts a type name into a Type. Names are case-insensitive. A
// length suffix like varchar(32) and a mime suffix like binary:image/jpeg are
// accepted and ignored.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i > 0 && strings.HasSuffix(n, ")") {
		n = n[:i]
	}
	if i := strings.IndexByte(n, ':'); i > 0 {
		n = n[:i]
	}
	for t, tn := range typeNames {
		if tn == n {
			return t, nil
		}
	}
	if t, ok := typeAliases[n]; ok {
		return t, nil
	}
	return 0, cerrors.Errorf("%q: %w", name, ErrUnknownType)
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// IsValid reports whether t is one of the declared types.
func (t Type) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, cerrors.Errorf("type %d: %w", int(t), ErrUnknownType)
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Accepts reports whether v has the Go type used for values of t. A nil value
// is accepted for every type.
func (t Type) Accepts(v any) bool {
	if v == nil {
		return true
	}
	var ok bool
	switch t {
	case TypeTinyInt:
		_, ok = v.(int8)
	case TypeSmallInt:
		_, ok = v.(int16)
	case TypeInteger:
		_, ok = v.(int32)
	case TypeBigInt:
		_, ok = v.(int64)
	case TypeDouble:
		_, ok = v.(float64)
	case TypeFloat:
		_, ok = v.(float32)
	case TypeVarchar, TypeChar:
		_, ok = v.(string)
	case TypeBinary:
		_, ok = v.([]byte)
	case TypeBoolean:
		_, ok = v.(bool)
	}
	return ok
}

// Convert turns a loosely typed value, as produced by decoding JSON, into the
// Go type used for t. Numbers must be integral and in range for the integer
// types. JSON numbers decoded with UseNumber keep their full precision.
// Binary values may be given as strings.
func (t Type) Convert(v any) (any, error) {
	if t.Accepts(v) {
		return v, nil
	}
	switch t {
	case TypeTinyInt:
		i, err := toInt(v, math.MinInt8, math.MaxInt8)
		return int8(i), err
	case TypeSmallInt:
		i, err := toInt(v, math.MinInt16, math.MaxInt16)
		return int16(i), err
	case TypeInteger:
		i, err := toInt(v, math.MinInt32, math.MaxInt32)
		return int32(i), err
	case TypeBigInt:
		return toInt(v, math.MinInt64, math.MaxInt64)
	case TypeDouble:
		return toFloat(v)
	case TypeFloat:
		f, err := toFloat(v)
		return float32(f), err
	case TypeBinary:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	}
	return nil, cerrors.Errorf("can not convert %T to %s", v, t)
}

// number is implemented by json.Number of encoding/json and goccy/go-json.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func toInt(v any, lo, hi int64) (int64, error) {
	var i int64
	switch n := v.(type) {
	case number:
		parsed, err := n.Int64()
		if err != nil {
			// e.g. 1e3 or 2.0
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, cerrors.Errorf("value %s is not a number", n.String())
			}
			return toInt(f, lo, hi)
		}
		i = parsed
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, cerrors.Errorf("value %v is not an integer", n)
		}
		i = int64(n)
	default:
		return 0, cerrors.Errorf("can not convert %T to an integer", v)
	}
	if i < lo || i > hi {
		return 0, cerrors.Errorf("value %d out of range [%d, %d]", i, lo, hi)
	}
	return i, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case number:
		f, err := n.Float64()
		if err != nil {
			return 0, cerrors.Errorf("value %s is not a number", n.String())
		}
		return f, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, cerrors.Errorf("can not convert %T to a float", v)
	}
}
