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
	"testing"

	"github.com/goccy/go-json"
	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/matryer/is"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		in   string
		want Type
	}{
		{"tinyint", TypeTinyInt},
		{"SMALLINT", TypeSmallInt},
		{"integer", TypeInteger},
		{"int", TypeInteger},
		{"bigint", TypeBigInt},
		{"long", TypeBigInt},
		{"double", TypeDouble},
		{"float", TypeFloat},
		{"varchar(32)", TypeVarchar},
		{"string", TypeVarchar},
		{"char(1)", TypeChar},
		{"binary:image/jpeg", TypeBinary},
		{"bytes", TypeBinary},
		{" boolean ", TypeBoolean},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseType(tc.in)
			is.NoErr(err)
			is.Equal(got, tc.want)
		})
	}
}

func TestParseType_Unknown(t *testing.T) {
	is := is.New(t)
	_, err := ParseType("timestamp")
	is.True(cerrors.Is(err, ErrUnknownType))
}

func TestType_TextRoundTrip(t *testing.T) {
	is := is.New(t)

	b, err := TypeSmallInt.MarshalText()
	is.NoErr(err)
	is.Equal(string(b), "smallint")

	var got Type
	is.NoErr(got.UnmarshalText(b))
	is.Equal(got, TypeSmallInt)

	_, err = Type(0).MarshalText()
	is.True(cerrors.Is(err, ErrUnknownType))
}

func TestType_Accepts(t *testing.T) {
	is := is.New(t)

	is.True(TypeTinyInt.Accepts(int8(1)))
	is.True(!TypeTinyInt.Accepts(int16(1)))
	is.True(TypeInteger.Accepts(int32(1)))
	is.True(!TypeInteger.Accepts(1)) // plain int is not integer
	is.True(TypeBigInt.Accepts(int64(1)))
	is.True(TypeDouble.Accepts(1.5))
	is.True(!TypeDouble.Accepts(float32(1.5)))
	is.True(TypeFloat.Accepts(float32(1.5)))
	is.True(TypeVarchar.Accepts("x"))
	is.True(TypeChar.Accepts("x"))
	is.True(TypeBinary.Accepts([]byte{1}))
	is.True(!TypeBinary.Accepts("x"))
	is.True(TypeBoolean.Accepts(true))
	is.True(TypeBoolean.Accepts(nil))
	is.True(!Type(0).Accepts(1))
}

func TestType_Convert(t *testing.T) {
	testCases := []struct {
		name    string
		typ     Type
		in      any
		want    any
		wantErr bool
	}{
		{"json number to integer", TypeInteger, float64(42), int32(42), false},
		{"json number to bigint", TypeBigInt, float64(1 << 40), int64(1 << 40), false},
		{"fraction to integer", TypeInteger, 1.5, nil, true},
		{"out of range tinyint", TypeTinyInt, float64(300), nil, true},
		{"json number to float", TypeFloat, 2.5, float32(2.5), false},
		{"int to double", TypeDouble, 3, float64(3), false},
		{"string to binary", TypeBinary, "abc", []byte("abc"), false},
		{"number to varchar", TypeVarchar, 1.0, nil, true},
		{"nil stays nil", TypeBoolean, nil, nil, false},
		{"already typed", TypeSmallInt, int16(7), int16(7), false},
		{"exact json number to bigint", TypeBigInt, json.Number("9007199254740993"), int64(9007199254740993), false},
		{"exponent json number to integer", TypeInteger, json.Number("1e3"), int32(1000), false},
		{"fraction json number to bigint", TypeBigInt, json.Number("2.5"), nil, true},
		{"json number out of range", TypeSmallInt, json.Number("40000"), nil, true},
		{"json number to double", TypeDouble, json.Number("0.125"), 0.125, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			got, err := tc.typ.Convert(tc.in)
			if tc.wantErr {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(got, tc.want)
		})
	}
}
