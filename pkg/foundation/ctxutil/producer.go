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

package ctxutil

import (
	"context"
)

// producerNameCtxKey is used as the key when saving the producer name in a
// context.
type producerNameCtxKey struct{}

// ContextWithProducerName wraps ctx and returns a context that contains the
// name of the producer the context belongs to.
func ContextWithProducerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, producerNameCtxKey{}, name)
}

// ProducerNameFromContext fetches the producer name from the context. If the
// context does not contain a producer name it returns an empty string.
func ProducerNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name := ctx.Value(producerNameCtxKey{})
	if name != nil {
		return name.(string)
	}
	return ""
}
