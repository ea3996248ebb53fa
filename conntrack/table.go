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

	"github.com/hashicorp/go-multierror"

	"github.com/rstade/netfcts/internal/rescue"
	"github.com/rstade/netfcts/logger"
)

// EvictionFunc 流被驱逐时的通知回调
//
// 回调仅是通知 不是否决 返回后 slot 立即被回收
// 需要在清理前冲刷缓冲数据的引擎必须在回调内同步完成
type EvictionFunc[K comparable] func(key K, snap Snapshot[K])

// Table 每 core 一份的流表 组合 slot 池与时间轮
//
// 单写者模型 全部操作同步完成且不加锁 一个实例只允许被
// 一个执行上下文驱动 多 core 部署时按 key 分片 每 core 独立建表
// 实例之间不共享 handle 也不迁移流
//
// 驱逐与晚到包之间不存在竞争 同一执行上下文里先发生者先生效
type Table[K comparable] struct {
	pool  *slotPool[K]
	wheel *wheel
	index map[K]Handle

	tickWidth time.Duration
	evict     EvictionFunc[K]
	uidSeq    uint64
}

// New 构造固定容量的流表
//
// capacity 为最大并发流数 wheelSlots 为时间轮槽数
// tickWidth 为一个 tick 对应的真实时长 三者构造后均不可变
func New[K comparable](capacity, wheelSlots int, tickWidth time.Duration) (*Table[K], error) {
	if capacity <= 0 || wheelSlots <= 0 || tickWidth <= 0 {
		return nil, ErrInvalidConfiguration
	}
	logger.Debugf("conntrack: new table capacity=%d, wheelSlots=%d, tickWidth=%v",
		capacity, wheelSlots, tickWidth)
	return &Table[K]{
		pool:      newSlotPool[K](capacity),
		wheel:     newWheel(wheelSlots, capacity),
		index:     make(map[K]Handle, capacity),
		tickWidth: tickWidth,
	}, nil
}

// SetEvictionFunc 注册驱逐通知回调
//
// 这是流表对调用方代码唯一的反向调用点
func (t *Table[K]) SetEvictionFunc(f EvictionFunc[K]) {
	t.evict = f
}

// OnNewFlow 接纳一条新流 返回其 handle
//
// key 已存在活跃映射时返回 ErrDuplicateFlow 表满时返回
// ErrCapacityExhausted 且不做任何驱逐腾位 失败时流表状态不变
func (t *Table[K]) OnNewFlow(key K, timeoutTicks uint) (Handle, error) {
	if _, ok := t.index[key]; ok {
		flowsRejected.WithLabelValues(rejectReasonDuplicate).Inc()
		return HandleNone, ErrDuplicateFlow
	}
	// 超时范围先于分配校验 保证失败路径无任何状态变化
	if timeoutTicks >= uint(t.wheel.Slots()) {
		flowsRejected.WithLabelValues(rejectReasonTimeout).Inc()
		return HandleNone, ErrTimeoutOutOfRange
	}

	h, err := t.pool.Allocate()
	if err != nil {
		flowsRejected.WithLabelValues(rejectReasonCapacity).Inc()
		return HandleNone, err
	}

	slot, err := t.wheel.Schedule(h, timeoutTicks)
	if err != nil {
		// 新分配的 handle 不可能已在轮上 走到这里说明内部状态损坏
		_ = t.pool.Release(h)
		return HandleNone, err
	}

	rec := &t.pool.slots[h]
	t.uidSeq++
	rec.key = key
	rec.state = StatePending
	rec.uid = t.uidSeq
	rec.admittedTick = t.wheel.Current()
	rec.lastActiveTick = t.wheel.Current()
	rec.wheelSlot = slot

	t.index[key] = h
	flowsAdmitted.Inc()
	liveFlows.Inc()
	return h, nil
}

// OnActivity 流上观测到活动 重置其空闲超时
//
// 每包一次的热路径操作 零分配 仅触达被腾出的槽
func (t *Table[K]) OnActivity(key K, timeoutTicks uint) error {
	h, ok := t.index[key]
	if !ok {
		return ErrUnknownFlow
	}

	slot, err := t.wheel.Refresh(h, timeoutTicks)
	if err != nil {
		return err
	}

	rec := &t.pool.slots[h]
	rec.lastActiveTick = t.wheel.Current()
	rec.wheelSlot = slot
	return nil
}

// OnClose 显式关闭一条流 立即摘轮并回收 slot
//
// 随后任何 Tick 都不会再对该流触发驱逐回调
func (t *Table[K]) OnClose(key K) (Snapshot[K], error) {
	h, ok := t.index[key]
	if !ok {
		return Snapshot[K]{}, ErrUnknownFlow
	}

	rec := &t.pool.slots[h]
	snap := rec.snapshot(ReleaseClosed)
	if t.wheel.Scheduled(h) {
		_ = t.wheel.Cancel(h)
	}
	_ = t.pool.Release(h)
	delete(t.index, key)

	flowsClosed.Inc()
	liveFlows.Dec()
	return snap, nil
}

// Tick 推进时间轮一个 tick 并驱逐该 tick 到期的所有流
//
// 对每个到期 handle 依次触发驱逐回调 随后回收 slot
// 回调 panic 会被捕获记录 不会阻断回收 返回本次驱逐的流数量
//
// 回调允许重入流表 可能关闭同批次中靠后的 handle 或让新流
// 复用其 slot 因此每个 handle 在处理前都要重新确认状态
func (t *Table[K]) Tick() int {
	expired := t.wheel.Advance()
	evicted := 0
	for _, h := range expired {
		rec := &t.pool.slots[h]
		// 已被回调释放的 slot 不驱逐 被新流复用的 slot 重新挂
		// 在轮上 同样跳过 留待其自身的超时到期
		if !rec.live || t.wheel.Scheduled(h) {
			continue
		}
		snap := rec.snapshot(ReleaseTimeout)

		delete(t.index, rec.key)
		if t.evict != nil {
			t.notifyEvicted(rec.key, snap)
		}
		_ = t.pool.Release(h)
		evicted++
	}

	if evicted > 0 {
		flowsEvicted.Add(float64(evicted))
		liveFlows.Sub(float64(evicted))
	}
	return evicted
}

func (t *Table[K]) notifyEvicted(key K, snap Snapshot[K]) {
	defer rescue.HandleCrash()
	t.evict(key, snap)
}

// Lookup 返回流的只读快照 绝不改变流表状态
func (t *Table[K]) Lookup(key K) (Snapshot[K], bool) {
	h, ok := t.index[key]
	if !ok {
		return Snapshot[K]{}, false
	}
	return t.pool.slots[h].snapshot(ReleaseUnknown), true
}

// State 返回引擎写入的分类标签
func (t *Table[K]) State(key K) (StateTag, error) {
	h, ok := t.index[key]
	if !ok {
		return 0, ErrUnknownFlow
	}
	return t.pool.slots[h].state, nil
}

// SetState 更新流的分类标签 流表核心不解释其含义
func (t *Table[K]) SetState(key K, tag StateTag) error {
	h, ok := t.index[key]
	if !ok {
		return ErrUnknownFlow
	}
	t.pool.slots[h].state = tag
	return nil
}

// Get 按 handle 访问活跃记录 供持有 handle 的引擎直接读写载荷
func (t *Table[K]) Get(h Handle) (*Record[K], error) {
	return t.pool.Get(h)
}

// Handle 返回 key 当前映射的 handle
func (t *Table[K]) Handle(key K) (Handle, bool) {
	h, ok := t.index[key]
	return h, ok
}

// Len 返回当前活跃流数量
func (t *Table[K]) Len() int {
	return t.pool.Len()
}

// Cap 返回固定容量
func (t *Table[K]) Cap() int {
	return t.pool.Cap()
}

// CurrentTick 返回时间轮当前 tick
func (t *Table[K]) CurrentTick() uint64 {
	return t.wheel.Current()
}

// TickWidth 返回一个 tick 对应的真实时长
func (t *Table[K]) TickWidth() time.Duration {
	return t.tickWidth
}

// Drain 立即驱逐全部活跃流 用于引擎停机收尾
//
// 对每条流触发驱逐回调 原因标记为 drained
// 返回回收过程中暴露的内部不一致错误 正常情况下为 nil
func (t *Table[K]) Drain() error {
	var errs error
	for key, h := range t.index {
		rec := &t.pool.slots[h]
		snap := rec.snapshot(ReleaseDrained)

		delete(t.index, key)
		if t.evict != nil {
			t.notifyEvicted(key, snap)
		}
		if t.wheel.Scheduled(h) {
			if err := t.wheel.Cancel(h); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		if err := t.pool.Release(h); err != nil {
			errs = multierror.Append(errs, err)
		}
		liveFlows.Dec()
	}
	return errs
}
