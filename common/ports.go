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

package common

import (
	"math/rand"
)

// ShufflePorts 返回 [first, last] 区间内乱序排列的端口列表
//
// 流量生成引擎按此顺序为新建流分配源端口
// 乱序可以避免端口顺序分配时 RSS/fdir 哈希分布不均的问题
func ShufflePorts(first, last uint16) []uint16 {
	ports := make([]uint16, 0, int(last)-int(first)+1)
	for p := int(first); p <= int(last); p++ {
		ports = append(ports, uint16(p))
	}
	rand.Shuffle(len(ports), func(i, j int) {
		ports[i], ports[j] = ports[j], ports[i]
	})
	return ports
}
