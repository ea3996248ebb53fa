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

// slotPool 固定容量的连接记录仓库
//
// 全部记录在构造时一次性分配 free list 直接穿在空闲 slot 的
// nextFree 字段上 alloc/release 均为 O(1) 且运行期零分配
// 容量构造后不再增长 保证最坏情况内存有界
type slotPool[K comparable] struct {
	slots    []Record[K]
	freeHead Handle
	liveNum  int
}

func newSlotPool[K comparable](capacity int) *slotPool[K] {
	p := &slotPool[K]{
		slots:    make([]Record[K], capacity),
		freeHead: 0,
	}
	for i := range p.slots {
		p.slots[i].nextFree = Handle(i + 1)
		p.slots[i].wheelSlot = wheelSlotNone
	}
	p.slots[capacity-1].nextFree = HandleNone
	return p
}

// Allocate 从 free list 头部摘取一个空闲 slot
func (p *slotPool[K]) Allocate() (Handle, error) {
	if p.freeHead == HandleNone {
		return HandleNone, ErrCapacityExhausted
	}
	h := p.freeHead
	rec := &p.slots[h]
	p.freeHead = rec.nextFree
	rec.nextFree = HandleNone
	rec.live = true
	p.liveNum++
	return h, nil
}

// Release 把 slot 归还 free list 并清空载荷
//
// key 可能携带指针 置零避免空闲 slot 挂住旧 key 的内存
func (p *slotPool[K]) Release(h Handle) error {
	rec, err := p.Get(h)
	if err != nil {
		return err
	}
	var zero K
	rec.key = zero
	rec.state = 0
	rec.uid = 0
	rec.admittedTick = 0
	rec.lastActiveTick = 0
	rec.live = false
	rec.wheelSlot = wheelSlotNone
	rec.nextFree = p.freeHead
	p.freeHead = h
	p.liveNum--
	return nil
}

// Get 返回 handle 对应的活跃记录
func (p *slotPool[K]) Get(h Handle) (*Record[K], error) {
	if h < 0 || int(h) >= len(p.slots) {
		return nil, ErrInvalidHandle
	}
	rec := &p.slots[h]
	if !rec.live {
		return nil, ErrInvalidHandle
	}
	return rec, nil
}

// Len 返回活跃记录数量
func (p *slotPool[K]) Len() int {
	return p.liveNum
}

// Cap 返回固定容量
func (p *slotPool[K]) Cap() int {
	return len(p.slots)
}
