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

package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/gsnio/gsn/pkg/foundation/ctxutil"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestCtxLogger_Levels(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		logfunc func(CtxLogger)
		want    string
	}{{
		name: "log empty",
		logfunc: func(logger CtxLogger) {
			logger.Log(ctx).Msg("")
		},
		want: `{}` + "\n",
	}, {
		name: "trace one-field",
		logfunc: func(logger CtxLogger) {
			logger.Trace(ctx).Str("foo", "bar").Msg("")
		},
		want: `{"level":"trace","foo":"bar"}` + "\n",
	}, {
		name: "debug two-field",
		logfunc: func(logger CtxLogger) {
			logger.Debug(ctx).
				Str("foo", "bar").
				Int("n", 123).
				Msg("")
		},
		want: `{"level":"debug","foo":"bar","n":123}` + "\n",
	}, {
		name: "info",
		logfunc: func(logger CtxLogger) {
			logger.Info(ctx).Msg("hello")
		},
		want: `{"level":"info","message":"hello"}` + "\n",
	}, {
		name: "warn",
		logfunc: func(logger CtxLogger) {
			logger.Warn(ctx).Msg("")
		},
		want: `{"level":"warn"}` + "\n",
	}, {
		name: "with level",
		logfunc: func(logger CtxLogger) {
			logger.WithLevel(ctx, zerolog.ErrorLevel).Msg("")
		},
		want: `{"level":"error"}` + "\n",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			var out bytes.Buffer
			logger := New(zerolog.New(&out))
			tc.logfunc(logger)
			is.Equal(out.String(), tc.want)
		})
	}
}

func TestCtxLogger_Component(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer

	logger := New(zerolog.New(&out)).WithComponent("graph.Graph")
	logger.Info(context.Background()).Msg("")

	is.Equal(logger.Component(), "graph.Graph")
	is.Equal(out.String(), `{"level":"info","component":"graph.Graph"}`+"\n")
}

type componentFixture struct{}

func TestCtxLogger_WithComponentFromType(t *testing.T) {
	is := is.New(t)

	logger := Nop().WithComponentFromType(&componentFixture{})
	is.Equal(logger.Component(), "foundation.log.componentFixture")
}

func TestCtxLogger_ProducerFromContext(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer

	ctx := ctxutil.ContextWithProducerName(context.Background(), "station-a")
	logger := New(zerolog.New(&out))
	logger.Warn(ctx).Msg("")

	is.Equal(out.String(), `{"level":"warn","producer":"station-a"}`+"\n")
}

func TestCtxLogger_DisabledLevel(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer

	ctx := ctxutil.ContextWithProducerName(context.Background(), "station-a")
	logger := New(zerolog.New(&out).Level(zerolog.InfoLevel)).WithComponent("x")
	logger.Debug(ctx).Str("foo", "bar").Msg("")

	is.Equal(out.Len(), 0)
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)

	f, err := ParseFormat("json")
	is.NoErr(err)
	is.Equal(f, FormatJSON)

	f, err = ParseFormat("cli")
	is.NoErr(err)
	is.Equal(f, FormatCLI)

	_, err = ParseFormat("xml")
	is.True(err != nil)
}
