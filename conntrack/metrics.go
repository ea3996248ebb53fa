// Copyright 2025 The netfcts Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conntrack

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rstade/netfcts/common"
)

// 指标只在流的准入/关闭/驱逐等慢路径更新
// refresh 路径刻意不打点 避免每包一次原子加
var (
	flowsAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "flows_admitted_total",
			Help:      "Flows admitted total",
		},
	)

	flowsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "flows_evicted_total",
			Help:      "Flows evicted by idle timeout total",
		},
	)

	flowsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "flows_closed_total",
			Help:      "Flows closed explicitly total",
		},
	)

	flowsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "flows_rejected_total",
			Help:      "Flows rejected total",
		},
		[]string{"reason"},
	)

	liveFlows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "live_flows",
			Help:      "Live flows currently tracked",
		},
	)
)

const (
	rejectReasonCapacity  = "capacity"
	rejectReasonDuplicate = "duplicate"
	rejectReasonTimeout   = "timeout"
)
