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

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/bytebufferpool"
)

// Version IP 版本 v4/v6
type Version uint8

const (
	V4 Version = iota
	V6
)

// IPV 基于 net.IP 做了一层封装
//
// 记录了 IP Bytes 以及协议版本信息
// 定长数组保证 IPV 可比较 可直接作为 map key 的组成部分
type IPV struct {
	IP      [net.IPv6len]byte
	Version Version
}

// ToIPV4 将 net.IP 转换为 IPV4 版本
func ToIPV4(ip net.IP) IPV {
	var dst [net.IPv6len]byte
	copy(dst[:], ip[:])
	return IPV{
		IP:      dst,
		Version: V4,
	}
}

// ToIPV6 将 net.IP 转换为 IPV6 版本
func ToIPV6(ip net.IP) IPV {
	var dst [net.IPv6len]byte
	copy(dst[:], ip[:])
	return IPV{
		IP:      dst,
		Version: V6,
	}
}

// NetIP 将 IPV 转换为 net.IP
func (ipv IPV) NetIP() net.IP {
	if ipv.Version == V4 {
		return ipv.IP[:net.IPv4len]
	}
	return ipv.IP[:]
}

func (ipv IPV) String() string {
	return ipv.NetIP().String()
}

type Port uint16

// L4Proto Layer4 传输层协议 即 TCP/UDP
type L4Proto string

const (
	L4ProtoTCP L4Proto = "tcp"
	L4ProtoUDP L4Proto = "udp"
)

// Tuple 四元组标识 流表的标准 flow key 形态
//
// 对于全双工链接来说 并无准确的源 IP 目标 IP 的说法 但 Socket 本身是有方向的
// 流表核心对 key 仅要求可比较 引擎需要五元组或其他复合 key 时可自行定义
type Tuple struct {
	SrcIP   IPV
	DstIP   IPV
	SrcPort Port
	DstPort Port
}

func (t Tuple) String() string {
	return fmt.Sprintf("%s:%d > %s:%d", t.SrcIP, t.SrcPort, t.DstIP, t.DstPort)
}

// Mirror 反转链接 即通信的另一端
func (t Tuple) Mirror() Tuple {
	return Tuple{
		SrcIP:   t.DstIP,
		DstIP:   t.SrcIP,
		SrcPort: t.DstPort,
		DstPort: t.SrcPort,
	}
}

// ToRaw 将四元组转换成原始数据格式
func (t Tuple) ToRaw() TupleRaw {
	return TupleRaw{
		SrcIP:   t.SrcIP.String(),
		DstIP:   t.DstIP.String(),
		SrcPort: uint16(t.SrcPort),
		DstPort: uint16(t.DstPort),
	}
}

// TupleRaw 四元组的字符串形态 用于快照导出
type TupleRaw struct {
	SrcIP   string `json:"srcIP"`
	DstIP   string `json:"dstIP"`
	SrcPort uint16 `json:"srcPort"`
	DstPort uint16 `json:"dstPort"`
}

func (t TupleRaw) String() string {
	return fmt.Sprintf("%s:%d > %s:%d", t.SrcIP, t.SrcPort, t.DstIP, t.DstPort)
}

// Hash 返回四元组的哈希值
//
// 引擎按 hash % N 将流分片到 per-core 的流表实例
// 同一条流的两个方向哈希值不同 需要方向无关分片时先做 Normalize
func (t Tuple) Hash() uint64 {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var b [2]byte
	buf.Write(t.SrcIP.IP[:])
	binary.BigEndian.PutUint16(b[:], uint16(t.SrcPort))
	buf.Write(b[:])
	buf.Write(t.DstIP.IP[:])
	binary.BigEndian.PutUint16(b[:], uint16(t.DstPort))
	buf.Write(b[:])
	return xxhash.Sum64(buf.Bytes())
}

// Normalize 返回方向无关的规范形态
//
// 两个方向的 Tuple 规范化后相等 取字节序较小的一端作为 Src
func (t Tuple) Normalize() Tuple {
	m := t.Mirror()
	if less(m, t) {
		return m
	}
	return t
}

func less(a, b Tuple) bool {
	for i := range a.SrcIP.IP {
		if a.SrcIP.IP[i] != b.SrcIP.IP[i] {
			return a.SrcIP.IP[i] < b.SrcIP.IP[i]
		}
	}
	return a.SrcPort < b.SrcPort
}
