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
	"github.com/pkg/errors"
)

func newError(format string, args ...any) error {
	format = "conntrack: " + format
	return errors.Errorf(format, args...)
}

var (
	// ErrCapacityExhausted 流表已满 新流被拒绝
	//
	// 流表绝不为给新流腾位而提前驱逐活跃流 是否丢包或做准入控制由调用方决策
	ErrCapacityExhausted = newError("capacity exhausted")

	// ErrInvalidHandle handle 不指向任何活跃 slot
	//
	// 二次释放 过期 handle 或越界都会触发 说明调用方状态与流表状态已经分叉
	ErrInvalidHandle = newError("invalid handle")

	// ErrUnknownFlow flow key 没有对应的活跃记录
	ErrUnknownFlow = newError("unknown flow")

	// ErrDuplicateFlow flow key 已经映射到一条活跃记录
	ErrDuplicateFlow = newError("duplicate flow")

	// ErrTimeoutOutOfRange 超时超过单圈时间轮的表达范围 即 >= 槽数量
	ErrTimeoutOutOfRange = newError("timeout out of range")

	// ErrAlreadyScheduled handle 已在时间轮上 未先摘除就重复调度
	ErrAlreadyScheduled = newError("already scheduled")

	// ErrInvalidConfiguration 非法构造参数
	ErrInvalidConfiguration = newError("invalid configuration")
)
