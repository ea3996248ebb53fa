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
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickDriverInvalidWidth(t *testing.T) {
	_, err := NewTickDriver(0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = NewTickDriver(-time.Second)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestTickDriverDueKeepsRemainder(t *testing.T) {
	// tickWidth 取 1 小时 测试本身的耗时远小于一个 tick
	d, err := NewTickDriver(time.Hour)
	assert.NoError(t, err)
	assert.Zero(t, d.Due())

	// 把上次推进点拨回 2.5 个 tick 之前 模拟时间流逝
	d.last = d.last.Add(-150 * time.Minute)
	anchor := d.last
	assert.Equal(t, 2, d.Due())

	// 推进点只前移整 tick 半个 tick 的零头保留
	assert.Equal(t, anchor.Add(2*time.Hour), d.last)
	assert.Zero(t, d.Due())

	// 零头与后续流逝的时间合并计数
	d.last = d.last.Add(-30 * time.Minute)
	assert.Equal(t, 1, d.Due())
}
