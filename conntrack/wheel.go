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

// wheelSlotNone 表示 handle 未被调度在任何槽上
const wheelSlotNone = -1

// wheelNode handle 在时间轮上的链节点
//
// 节点数组与 slot 池等长 按 handle 下标寻址 槽内为双向链表
// 摘除任意 handle 无需扫描 其它槽 也无需任何分配
type wheelNode struct {
	next   Handle
	prev   Handle
	bucket int
}

type wheelBucket struct {
	head Handle
	tail Handle
}

// wheel 单圈槽式时间轮
//
// current 只增不回绕 槽下标取模得到
// 超时上限为 slots-1 个 tick 更长的超时需要调大 tickWidth
// 或增加槽数量 不支持多圈计数
type wheel struct {
	buckets []wheelBucket
	nodes   []wheelNode
	current uint64
	scratch []Handle
}

func newWheel(slots, capacity int) *wheel {
	w := &wheel{
		buckets: make([]wheelBucket, slots),
		nodes:   make([]wheelNode, capacity),
		scratch: make([]Handle, 0, capacity),
	}
	for i := range w.buckets {
		w.buckets[i].head = HandleNone
		w.buckets[i].tail = HandleNone
	}
	for i := range w.nodes {
		w.nodes[i].next = HandleNone
		w.nodes[i].prev = HandleNone
		w.nodes[i].bucket = wheelSlotNone
	}
	return w
}

// Current 返回当前 tick
func (w *wheel) Current() uint64 {
	return w.current
}

// Slots 返回槽数量
func (w *wheel) Slots() int {
	return len(w.buckets)
}

// Schedule 将 handle 挂到 ticks 个 tick 之后到期的槽上
//
// ticks 为 0 时于下一次 Advance 到期 绝不在 Schedule 内部立即触发
// 返回所挂的槽下标
func (w *wheel) Schedule(h Handle, ticks uint) (int, error) {
	if h < 0 || int(h) >= len(w.nodes) {
		return wheelSlotNone, ErrInvalidHandle
	}
	if ticks >= uint(len(w.buckets)) {
		return wheelSlotNone, ErrTimeoutOutOfRange
	}
	node := &w.nodes[h]
	if node.bucket != wheelSlotNone {
		return wheelSlotNone, ErrAlreadyScheduled
	}

	// +1 使得 ticks=0 恰好落在下一次 Advance 要排空的槽上
	idx := int((w.current + uint64(ticks) + 1) % uint64(len(w.buckets)))
	w.pushBack(idx, h)
	return idx, nil
}

// Refresh 将 handle 从当前槽摘下并按新超时重新挂载
//
// 每个观测到的包都会触发一次 不允许分配 也不扫描被腾出槽之外的任何槽
func (w *wheel) Refresh(h Handle, ticks uint) (int, error) {
	if h < 0 || int(h) >= len(w.nodes) {
		return wheelSlotNone, ErrInvalidHandle
	}
	// 范围校验在摘除之前完成 失败时不得有任何状态变化
	if ticks >= uint(len(w.buckets)) {
		return wheelSlotNone, ErrTimeoutOutOfRange
	}
	if w.nodes[h].bucket != wheelSlotNone {
		w.unlink(h)
	}
	return w.Schedule(h, ticks)
}

// Cancel 将 handle 从时间轮上摘下 不再重新挂载
func (w *wheel) Cancel(h Handle) error {
	if h < 0 || int(h) >= len(w.nodes) {
		return ErrInvalidHandle
	}
	if w.nodes[h].bucket == wheelSlotNone {
		return ErrInvalidHandle
	}
	w.unlink(h)
	return nil
}

// Scheduled 返回 handle 是否挂在时间轮上
func (w *wheel) Scheduled(h Handle) bool {
	return h >= 0 && int(h) < len(w.nodes) && w.nodes[h].bucket != wheelSlotNone
}

// Advance 推进一个 tick 并按 FIFO 序排空到期槽
//
// 返回的切片为 wheel 内部的复用缓冲 仅在下一次 Advance 前有效
// 调用方必须严格按 tick 逐一推进 负载过高跳过的 tick 不会补触发
func (w *wheel) Advance() []Handle {
	w.current++
	idx := int(w.current % uint64(len(w.buckets)))

	w.scratch = w.scratch[:0]
	for h := w.buckets[idx].head; h != HandleNone; {
		node := &w.nodes[h]
		next := node.next
		node.next = HandleNone
		node.prev = HandleNone
		node.bucket = wheelSlotNone
		w.scratch = append(w.scratch, h)
		h = next
	}
	w.buckets[idx].head = HandleNone
	w.buckets[idx].tail = HandleNone
	return w.scratch
}

func (w *wheel) pushBack(idx int, h Handle) {
	node := &w.nodes[h]
	node.bucket = idx
	node.next = HandleNone

	b := &w.buckets[idx]
	if b.tail == HandleNone {
		node.prev = HandleNone
		b.head = h
		b.tail = h
		return
	}
	node.prev = b.tail
	w.nodes[b.tail].next = h
	b.tail = h
}

func (w *wheel) unlink(h Handle) {
	node := &w.nodes[h]
	b := &w.buckets[node.bucket]

	if node.prev != HandleNone {
		w.nodes[node.prev].next = node.next
	} else {
		b.head = node.next
	}
	if node.next != HandleNone {
		w.nodes[node.next].prev = node.prev
	} else {
		b.tail = node.prev
	}
	node.next = HandleNone
	node.prev = HandleNone
	node.bucket = wheelSlotNone
}
