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

package fasttime

import (
	"sync/atomic"
	"time"
)

func init() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for tm := range ticker.C {
			atomic.StoreInt64(&currentTimestamp, tm.Unix())
		}
	}()
}

var currentTimestamp = time.Now().Unix()

// UnixTimestamp 获取当前 unix 时间戳 性能更快
//
// 秒级精度 仅适用于记录快照落盘时间之类的粗粒度场景
// 时间轮的 tick 推进不使用本时钟 其精度由引擎的轮询周期决定
func UnixTimestamp() int64 {
	return atomic.LoadInt64(&currentTimestamp)
}
