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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rstade/netfcts/conntrack"
)

func TestPipelineIDString(t *testing.T) {
	p := PipelineID{Core: 1, Port: 0, RxQueue: 2}
	assert.Equal(t, "<c1, p0, rx2>", p.String())
}

func TestHubCollectRecords(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	collector := hub.Subscribe(16)
	defer hub.Unsubscribe(collector)

	const pipelines = 3
	var wg sync.WaitGroup
	for i := 0; i < pipelines; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := hub.Subscribe(4)
			defer hub.Unsubscribe(q)

			// 模拟流水线 收到抓取请求后上报本地快照
			for {
				data, ok := q.PopTimeout(time.Second)
				if !ok {
					return
				}
				if _, ok := data.(FetchRecords); !ok {
					continue
				}
				hub.Publish(RecordsMsg[string]{
					Pipeline: PipelineID{Core: uint16(i)},
					Records: []conntrack.Snapshot[string]{
						{Key: "flow", UID: uint64(i + 1)},
					},
				})
				return
			}
		}()
	}

	// 等待流水线全部就位后再广播
	time.Sleep(50 * time.Millisecond)
	msgs := CollectRecords[string](hub, collector, pipelines, time.Second)
	wg.Wait()

	assert.Len(t, msgs, pipelines)
	for _, msg := range msgs {
		assert.Len(t, msg.Records, 1)
		assert.NotZero(t, msg.Records[0].UID)
	}
}
