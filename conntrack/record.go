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

// Handle 标识连接记录所在的 slot
//
// 在记录的生命周期内保持稳定 释放后会被后续的新流复用
type Handle int

// HandleNone 无效 handle
const HandleNone Handle = -1

// StateTag 流的分类标签
//
// 流表核心不解释其含义 仅代引擎存取
// 具名常量只是约定俗成的取值 引擎可以使用任意 uint8
type StateTag uint8

const (
	StatePending StateTag = iota
	StateEstablished
	StateHalfClosed
)

// ReleaseCause 记录流被释放的原因
type ReleaseCause uint8

const (
	ReleaseUnknown ReleaseCause = iota
	// ReleaseTimeout 空闲超时 由 Tick 驱逐
	ReleaseTimeout
	// ReleaseClosed 引擎显式关闭
	ReleaseClosed
	// ReleaseDrained 引擎停机时整表排空
	ReleaseDrained
)

func (rc ReleaseCause) String() string {
	switch rc {
	case ReleaseTimeout:
		return "timeout"
	case ReleaseClosed:
		return "closed"
	case ReleaseDrained:
		return "drained"
	}
	return "unknown"
}

// Record 单条流的连接记录 即 slot 的数据载荷
//
// 除 flow key 以外的字段均为平铺的小整数 保证记录紧凑
// nextFree 在 slot 空闲时充当 free list 的链域 活跃时无意义
type Record[K comparable] struct {
	key   K
	state StateTag

	uid            uint64
	admittedTick   uint64
	lastActiveTick uint64

	wheelSlot int

	nextFree Handle
	live     bool
}

// Key 返回流的标识 key
func (r *Record[K]) Key() K {
	return r.key
}

// State 返回引擎写入的分类标签
func (r *Record[K]) State() StateTag {
	return r.state
}

// SetState 更新分类标签
func (r *Record[K]) SetState(tag StateTag) {
	r.state = tag
}

// UID 返回记录的唯一标识
//
// handle 会被复用 uid 不会 适合作为跨生命周期的流标识
func (r *Record[K]) UID() uint64 {
	return r.uid
}

// LastActiveTick 返回最近一次 refresh 时的 tick
func (r *Record[K]) LastActiveTick() uint64 {
	return r.lastActiveTick
}

// AdmittedTick 返回流被接纳时的 tick
func (r *Record[K]) AdmittedTick() uint64 {
	return r.admittedTick
}

func (r *Record[K]) snapshot(cause ReleaseCause) Snapshot[K] {
	return Snapshot[K]{
		Key:            r.key,
		State:          r.state,
		UID:            r.uid,
		AdmittedTick:   r.admittedTick,
		LastActiveTick: r.lastActiveTick,
		Cause:          cause,
	}
}

// Snapshot 连接记录的不可变副本
//
// 驱逐回调与 Lookup 返回的都是 Snapshot 跨 core 传递流状态
// 时只允许传递 Snapshot 不允许共享活跃记录
type Snapshot[K comparable] struct {
	Key            K            `json:"key"`
	State          StateTag     `json:"state"`
	UID            uint64       `json:"uid"`
	AdmittedTick   uint64       `json:"admittedTick"`
	LastActiveTick uint64       `json:"lastActiveTick"`
	Cause          ReleaseCause `json:"cause"`
}
