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

package common

const (
	// App 应用程序名称
	App = "netfcts"

	// Version 应用程序版本
	Version = "v0.0.1"

	// DefaultFlowCapacity 默认的单实例流表容量
	//
	// 流表为固定容量 构造之后不再扩容 引擎应该按每 core 的预期并发流数量配置
	// 此默认值仅作为兜底 真实部署应该通过配置显式指定
	DefaultFlowCapacity = 1 << 16

	// DefaultWheelSlots 默认的时间轮槽数量
	//
	// 单圈时间轮可表达的最大超时为 (slots-1) * tickWidth
	// 槽越多可表达的超时范围越大 但内存占用也随之增加
	DefaultWheelSlots = 1 << 10
)
