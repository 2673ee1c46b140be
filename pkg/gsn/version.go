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

package gsn

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// version is injected at build time with
// -ldflags "-X github.com/gsnio/gsn/pkg/gsn.version=v1.2.3".
var version string

// Version returns the module version of the running binary, "development"
// when unknown. With withPlatform the OS and architecture are appended.
func Version(withPlatform bool) string {
	v := "development"
	switch {
	case version != "":
		v = version
	default:
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if withPlatform {
		return fmt.Sprintf("%s %s/%s", v, runtime.GOOS, runtime.GOARCH)
	}
	return v
}
