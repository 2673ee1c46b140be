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

const (
	ComponentField = "component"
	AttemptField   = "attempt"
	DurationField  = "duration"

	ProducerField       = "producer"
	ProducerStatusField = "producer_status"
	InstanceIDField     = "instance_id"
	WrapperField        = "wrapper"
	NodeField           = "node"
	DependencyField     = "dependency"
	CycleField          = "cycle"
	DeclarationField    = "declaration"
	SinkPolicyField     = "sink_policy"
	SinkCapacityField   = "sink_capacity"

	ServerAddressField = "address"
	FilepathField      = "filepath"
)
