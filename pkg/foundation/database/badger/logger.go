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

package badger

import (
	"strings"

	"github.com/rs/zerolog"
)

// logger routes badger's log output through zerolog.
type logger zerolog.Logger

func (l logger) Errorf(format string, args ...any) {
	l.log(zerolog.ErrorLevel, format, args)
}

func (l logger) Warningf(format string, args ...any) {
	l.log(zerolog.WarnLevel, format, args)
}

func (l logger) Infof(format string, args ...any) {
	l.log(zerolog.InfoLevel, format, args)
}

// Debugf is logged on trace level, badger is very chatty.
func (l logger) Debugf(format string, args ...any) {
	l.log(zerolog.TraceLevel, format, args)
}

func (l logger) log(level zerolog.Level, format string, args []any) {
	zl := zerolog.Logger(l)
	zl.WithLevel(level).Msgf(strings.TrimSuffix(format, "\n"), args...)
}
