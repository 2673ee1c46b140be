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

package prometheus

import (
	"github.com/gsnio/gsn/pkg/foundation/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// HistogramOpts configures the buckets of timers created by Registry.
type HistogramOpts struct {
	Buckets []float64
}

func applyHistogramOpts(opts prometheus.HistogramOpts, metricsOpts []metrics.Option) prometheus.HistogramOpts {
	for _, o := range metricsOpts {
		if ho, ok := o.(HistogramOpts); ok && ho.Buckets != nil {
			opts.Buckets = ho.Buckets
		}
	}
	return opts
}
