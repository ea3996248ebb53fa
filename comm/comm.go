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

package comm

import (
	"fmt"
	"time"

	"github.com/rstade/netfcts/common"
	"github.com/rstade/netfcts/conntrack"
	"github.com/rstade/netfcts/internal/pubsub"
)

// PipelineID 标识一条运行在指定 core 上的处理流水线
type PipelineID struct {
	Core    uint16
	Port    uint16
	RxQueue uint16
}

func (p PipelineID) String() string {
	return fmt.Sprintf("<c%d, p%d, rx%d>", p.Core, p.Port, p.RxQueue)
}

// Counters 流水线的收发计数
type Counters struct {
	RxPackets uint64
	TxPackets uint64
	RxBytes   uint64
	TxBytes   uint64
}

// FetchRecords 控制面请求各流水线上报连接记录快照
type FetchRecords struct{}

// FetchCounters 控制面请求各流水线上报计数器
type FetchCounters struct{}

// RecordsMsg 流水线上报的连接记录快照批次
//
// 快照为不可变副本 跨 core 只传递副本 绝不共享活跃记录
type RecordsMsg[K comparable] struct {
	Pipeline PipelineID
	Records  []conntrack.Snapshot[K]
}

// CountersMsg 流水线上报的计数器
type CountersMsg struct {
	Pipeline PipelineID
	Counters Counters
}

// Hub 连接控制面与各流水线的消息总线
//
// 控制面与每条流水线各订阅一个队列 消息广播到全部订阅者
// 由接收方按消息类型过滤 发布永不阻塞流水线
type Hub struct {
	bus *pubsub.PubSub
}

func NewHub() *Hub {
	return &Hub{bus: pubsub.New()}
}

// Subscribe 订阅总线 size<=0 时使用默认缓冲
func (h *Hub) Subscribe(size int) pubsub.Queue {
	if size <= 0 {
		size = common.Concurrency()
	}
	return h.bus.Subscribe(size)
}

func (h *Hub) Unsubscribe(q pubsub.Queue) {
	h.bus.Unsubscribe(q)
}

func (h *Hub) Publish(msg any) {
	h.bus.Publish(msg)
}

// Close 关闭总线及全部队列
func (h *Hub) Close() {
	h.bus.CloseAll()
}

// CollectRecords 广播抓取请求并聚合 n 条流水线的应答
//
// 达到 n 条应答或超时后返回 其余类型的消息被跳过
func CollectRecords[K comparable](h *Hub, q pubsub.Queue, n int, timeout time.Duration) []RecordsMsg[K] {
	h.Publish(FetchRecords{})

	deadline := time.Now().Add(timeout)
	out := make([]RecordsMsg[K], 0, n)
	for len(out) < n {
		remain := time.Until(deadline)
		if remain <= 0 {
			break
		}
		data, ok := q.PopTimeout(remain)
		if !ok {
			break
		}
		if msg, ok := data.(RecordsMsg[K]); ok {
			out = append(out, msg)
		}
	}
	return out
}
