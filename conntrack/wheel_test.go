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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWheelFiresAfterTimeout(t *testing.T) {
	tests := []struct {
		name  string
		slots int
		ticks uint
	}{
		{name: "zero timeout", slots: 4, ticks: 0},
		{name: "one tick", slots: 4, ticks: 1},
		{name: "max timeout", slots: 4, ticks: 3},
		{name: "large wheel", slots: 128, ticks: 77},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWheel(tt.slots, 8)
			_, err := w.Schedule(Handle(0), tt.ticks)
			assert.NoError(t, err)

			// 第 ticks+1 次 Advance 触发 且仅触发一次
			for i := uint(0); i < tt.ticks; i++ {
				assert.Empty(t, w.Advance())
			}
			fired := w.Advance()
			assert.Equal(t, []Handle{0}, fired)
			assert.False(t, w.Scheduled(Handle(0)))
		})
	}
}

func TestWheelScheduleErrors(t *testing.T) {
	w := newWheel(4, 4)

	_, err := w.Schedule(Handle(-1), 0)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = w.Schedule(Handle(4), 0)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	// 超时上限为 slots-1
	_, err = w.Schedule(Handle(0), 4)
	assert.ErrorIs(t, err, ErrTimeoutOutOfRange)

	_, err = w.Schedule(Handle(0), 2)
	assert.NoError(t, err)
	_, err = w.Schedule(Handle(0), 1)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)
}

func TestWheelRefreshResetsExpiry(t *testing.T) {
	w := newWheel(8, 4)

	_, err := w.Schedule(Handle(1), 1)
	assert.NoError(t, err)

	// 原本下两个 tick 内到期 refresh 后推迟到 3 个 tick 之后
	_, err = w.Refresh(Handle(1), 2)
	assert.NoError(t, err)

	assert.Empty(t, w.Advance())
	assert.Empty(t, w.Advance())
	assert.Equal(t, []Handle{1}, w.Advance())
}

func TestWheelRefreshOutOfRangeKeepsState(t *testing.T) {
	w := newWheel(4, 4)

	slot, err := w.Schedule(Handle(0), 1)
	assert.NoError(t, err)

	// 范围校验失败不得摘除原有调度
	_, err = w.Refresh(Handle(0), 4)
	assert.ErrorIs(t, err, ErrTimeoutOutOfRange)
	assert.True(t, w.Scheduled(Handle(0)))
	assert.Equal(t, slot, w.nodes[0].bucket)

	assert.Empty(t, w.Advance())
	assert.Equal(t, []Handle{0}, w.Advance())
}

func TestWheelCancel(t *testing.T) {
	w := newWheel(4, 4)

	_, err := w.Schedule(Handle(2), 1)
	assert.NoError(t, err)
	assert.NoError(t, w.Cancel(Handle(2)))
	assert.False(t, w.Scheduled(Handle(2)))

	// 未调度的 handle 不允许重复摘除
	assert.ErrorIs(t, w.Cancel(Handle(2)), ErrInvalidHandle)

	for i := 0; i < 8; i++ {
		assert.Empty(t, w.Advance())
	}
}

func TestWheelBucketFIFO(t *testing.T) {
	w := newWheel(4, 8)

	// 同一槽内按插入序触发
	for h := 0; h < 5; h++ {
		_, err := w.Schedule(Handle(h), 2)
		assert.NoError(t, err)
	}
	// 中间摘除一个 不影响其余顺序
	assert.NoError(t, w.Cancel(Handle(2)))

	assert.Empty(t, w.Advance())
	assert.Empty(t, w.Advance())
	assert.Equal(t, []Handle{0, 1, 3, 4}, w.Advance())
}

func TestWheelWrapAround(t *testing.T) {
	w := newWheel(4, 2)

	// 跨越多圈 槽下标回绕 current 只增不回绕
	for round := 0; round < 10; round++ {
		_, err := w.Schedule(Handle(0), 3)
		assert.NoError(t, err)
		for i := 0; i < 3; i++ {
			assert.Empty(t, w.Advance())
		}
		assert.Equal(t, []Handle{0}, w.Advance())
	}
	assert.Equal(t, uint64(40), w.Current())
}
