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

package measure

import (
	"github.com/gsnio/gsn/pkg/foundation/metrics"
	"github.com/gsnio/gsn/pkg/foundation/metrics/prometheus"
)

var (
	GSNInfo = metrics.NewLabeledGauge("gsn_info",
		"Information about the GSN runtime.",
		[]string{"version"})

	ProducersGauge = metrics.NewLabeledGauge("gsn_producers",
		"Number of producers by status.",
		[]string{"status"})
	ActiveInstancesGauge = metrics.NewLabeledGauge("gsn_wrapper_active_instances",
		"Number of running producer instances by wrapper kind.",
		[]string{"wrapper"})
	ProducerRestartsCount = metrics.NewLabeledCounter("gsn_producer_restarts",
		"Number of times a failed producer was restarted.",
		[]string{"producer"})
	InitializeDurationTimer = metrics.NewLabeledTimer("gsn_wrapper_initialize_duration_seconds",
		"Time spent initializing producers by wrapper kind.",
		[]string{"wrapper"},
		prometheus.HistogramOpts{Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10}},
	)

	PublishedRecordsCount = metrics.NewLabeledCounter("gsn_published_records",
		"Number of records accepted by producer.",
		[]string{"producer"})
	RejectedRecordsCount = metrics.NewLabeledCounter("gsn_rejected_records",
		"Number of records rejected by producer and reason (schema, full, closed).",
		[]string{"producer", "reason"})

	SinkDepthGauge = metrics.NewLabeledGauge("gsn_sink_depth",
		"Number of records waiting in a delivery sink.",
		[]string{"producer"})
	SinkDroppedCount = metrics.NewLabeledCounter("gsn_sink_dropped_records",
		"Number of records evicted from a full delivery sink.",
		[]string{"producer"})

	TopologyNodesGauge = metrics.NewGauge("gsn_topology_nodes",
		"Number of nodes in the deployed dependency graph.")
)
