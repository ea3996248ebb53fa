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

package socket

// Sock 标识一个具体的 socket 端点
type Sock struct {
	IP   IPV
	Port Port
}

// SockIndex 维护 socket 端点到连接记录 handle 的旁路索引
//
// 代理引擎在收到 DUT 侧应答后才得知对端 socket 此时流已经按
// flow key 注册在流表中 SockIndex 提供从端点反查 handle 的入口
// 与流表实例一样为单写者所有 不做内部加锁
type SockIndex struct {
	socks map[Sock]int
}

func NewSockIndex(sizeHint int) *SockIndex {
	return &SockIndex{
		socks: make(map[Sock]int, sizeHint),
	}
}

// Get 返回端点关联的 handle
func (si *SockIndex) Get(s Sock) (int, bool) {
	h, ok := si.socks[s]
	return h, ok
}

// Insert 登记端点与 handle 的关联 重复登记覆盖旧值
func (si *SockIndex) Insert(s Sock, handle int) {
	si.socks[s] = handle
}

// Remove 删除端点关联 返回被删除的 handle
func (si *SockIndex) Remove(s Sock) (int, bool) {
	h, ok := si.socks[s]
	if ok {
		delete(si.socks, s)
	}
	return h, ok
}

// Len 返回当前登记的端点数量
func (si *SockIndex) Len() int {
	return len(si.socks)
}

// Handles 返回当前登记的全部 handle
func (si *SockIndex) Handles() []int {
	hs := make([]int, 0, len(si.socks))
	for _, h := range si.socks {
		hs = append(hs, h)
	}
	return hs
}
