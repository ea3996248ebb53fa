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
	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

// TupleFromLayers 从已解码的 gopacket Layers 中提取四元组
//
// 流表本身不做包解析 这里仅是分类边界的便捷函数
// 引擎把网卡收到的包交给 gopacket 解码后 用本函数得到 flow key
// 未能同时取到网络层和传输层信息时返回 false
func TupleFromLayers(lyrs ...gopacket.Layer) (Tuple, L4Proto, bool) {
	var t Tuple
	var proto L4Proto
	var hasNet, hasTransport bool

	for _, layerType := range lyrs {
		switch lyr := layerType.(type) {
		case *layers.IPv4:
			t.SrcIP = ToIPV4(lyr.SrcIP)
			t.DstIP = ToIPV4(lyr.DstIP)
			hasNet = true

		case *layers.IPv6:
			t.SrcIP = ToIPV6(lyr.SrcIP)
			t.DstIP = ToIPV6(lyr.DstIP)
			hasNet = true

		case *layers.TCP:
			proto = L4ProtoTCP
			t.SrcPort = Port(lyr.SrcPort)
			t.DstPort = Port(lyr.DstPort)
			hasTransport = true

		case *layers.UDP:
			proto = L4ProtoUDP
			t.SrcPort = Port(lyr.SrcPort)
			t.DstPort = Port(lyr.DstPort)
			hasTransport = true
		}
	}

	if !hasNet || !hasTransport {
		return Tuple{}, "", false
	}
	return t, proto, true
}

// TupleFromPacket 从完整的 gopacket.Packet 中提取四元组
func TupleFromPacket(pkt gopacket.Packet) (Tuple, L4Proto, bool) {
	var lyrs []gopacket.Layer
	if lyr := pkt.NetworkLayer(); lyr != nil {
		lyrs = append(lyrs, lyr)
	}
	if lyr := pkt.TransportLayer(); lyr != nil {
		lyrs = append(lyrs, lyr)
	}
	return TupleFromLayers(lyrs...)
}
