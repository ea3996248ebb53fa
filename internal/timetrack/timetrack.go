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

package timetrack

import (
	"time"

	"github.com/rstade/netfcts/logger"
)

// TimeAdder 累计某一操作的耗时 每满 sampleSize 次输出一次均值
//
// 用于粗粒度观察热路径操作的单次成本 累加本身只有一次加法
// 不在每次观测时打日志 避免影响被测路径
type TimeAdder struct {
	name       string
	sum        time.Duration
	count      uint64
	sampleSize uint64
}

func New(name string, sampleSize uint64) *TimeAdder {
	if sampleSize == 0 {
		sampleSize = 1
	}
	return &TimeAdder{
		name:       name,
		sampleSize: sampleSize,
	}
}

func (ta *TimeAdder) Add(d time.Duration) {
	ta.sum += d
	ta.count++

	if ta.count%ta.sampleSize == 0 {
		logger.Infof("timetrack %s: sum=%v, count=%d, per count=%v",
			ta.name, ta.sum, ta.count, ta.sum/time.Duration(ta.count))
	}
}

// Count 返回累计观测次数
func (ta *TimeAdder) Count() uint64 {
	return ta.count
}

// Mean 返回当前均值 无观测时返回 0
func (ta *TimeAdder) Mean() time.Duration {
	if ta.count == 0 {
		return 0
	}
	return ta.sum / time.Duration(ta.count)
}
