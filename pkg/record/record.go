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
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Record is one timestamped unit of sensor data. Fields maps field names to
// values whose Go types follow the field type (see Type.Accepts).
type Record struct {
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

// New returns a record with the given fields stamped with the current time.
func New(fields map[string]any) Record {
	return Record{Timestamp: time.Now(), Fields: fields}
}

// Clone returns a deep copy of r. Field names are normalized to lower case
// and binary values are copied, so the clone shares no memory with r.
func (r Record) Clone() Record {
	out := Record{
		Timestamp: r.Timestamp,
		Fields:    make(map[string]any, len(r.Fields)),
	}
	for k, v := range r.Fields {
		if b, ok := v.([]byte); ok && b != nil {
			v = append([]byte(nil), b...)
		}
		out.Fields[strings.ToLower(k)] = v
	}
	return out
}

// Get returns the value of a field, looking it up case-insensitively.
func (r Record) Get(name string) (any, bool) {
	if v, ok := r.Fields[name]; ok {
		return v, true
	}
	lower := strings.ToLower(name)
	for k, v := range r.Fields {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return nil, false
}

// Bytes returns the JSON encoding of the record, which is also the format
// read by the replay wrapper.
func (r Record) Bytes() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		// values of a validated record always encode
		return []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return b
}

func typeOf(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
