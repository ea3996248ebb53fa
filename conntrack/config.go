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
	"time"

	"github.com/rstade/netfcts/common"
	"github.com/rstade/netfcts/confengine"
)

// Options 流表的构造配置
//
// 对应配置文件中的 `conntrack` 段
type Options struct {
	// Capacity 最大并发流数 即 slot 池容量
	Capacity int `config:"capacity"`

	// WheelSlots 时间轮槽数量 单圈可表达的最大超时为 slots-1 个 tick
	WheelSlots int `config:"wheelSlots"`

	// TickWidth 一个 tick 对应的真实时长
	TickWidth time.Duration `config:"tickWidth"`
}

// Validate 补全缺省值并校验
func (o *Options) Validate() error {
	if o.Capacity == 0 {
		o.Capacity = common.DefaultFlowCapacity
	}
	if o.WheelSlots == 0 {
		o.WheelSlots = common.DefaultWheelSlots
	}
	if o.TickWidth == 0 {
		o.TickWidth = time.Second
	}
	if o.Capacity < 0 || o.WheelSlots < 0 || o.TickWidth < 0 {
		return ErrInvalidConfiguration
	}
	return nil
}

// NewFromConfig 从配置文件的 `conntrack` 段构造流表
func NewFromConfig[K comparable](conf *confengine.Config) (*Table[K], error) {
	var opts Options
	if err := conf.UnpackChild("conntrack", &opts); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return New[K](opts.Capacity, opts.WheelSlots, opts.TickWidth)
}
