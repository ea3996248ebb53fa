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
)

// TickDriver 把墙上时钟换算成应推进的 tick 数
//
// 流表自身不起 goroutine 也不感知真实时间 run-to-completion
// 的轮询循环每轮调用一次 Due 再按返回值调用相应次数的 Tick
// 轮询周期抖动只影响驱逐的延迟 不影响正确性
// 负载过高时少调 Tick 属于调用方的跳帧决策 流表不会补触发
type TickDriver struct {
	width time.Duration
	last  time.Time
}

func NewTickDriver(width time.Duration) (*TickDriver, error) {
	if width <= 0 {
		return nil, ErrInvalidConfiguration
	}
	return &TickDriver{
		width: width,
		last:  time.Now(),
	}, nil
}

// Due 返回自上次调用以来到期的 tick 数
//
// 不足一个 tickWidth 的零头保留到下一次调用 不会丢失
func (d *TickDriver) Due() int {
	now := time.Now()
	n := int(now.Sub(d.last) / d.width)
	if n > 0 {
		d.last = d.last.Add(time.Duration(n) * d.width)
	}
	return n
}
