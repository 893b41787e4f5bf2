// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package moldudp64

import (
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/itch"
)

var EndpointMoldUDP64SessionMetadata = gopacket.EndpointTypeMetadata{Name: "MoldUDP64", Formatter: func(b []byte) string {
	return string(b[:SessionLength])
}}
var EndpointMoldUDP64Session = gopacket.RegisterEndpointType(10000, EndpointMoldUDP64SessionMetadata)

var LayerTypeMoldUDP64 = gopacket.RegisterLayerType(10000, gopacket.LayerTypeMetadata{Name: "MoldUDP64", Decoder: gopacket.DecodeFunc(decodeMoldUDP64)})

// RegisterUDPPort makes gopacket decode UDP datagrams to or from port as
// MoldUDP64.
func RegisterUDPPort(port uint16) {
	layers.RegisterUDPPortLayerType(layers.UDPPort(port), LayerTypeMoldUDP64)
}

// MoldUDP64 is the gopacket layer of a MoldUDP64 packet. Its blocks are
// decoded into ITCH records as part of the layer.
type MoldUDP64 struct {
	layers.BaseLayer
	Packet
}

var (
	_ gopacket.Layer             = &MoldUDP64{}
	_ gopacket.DecodingLayer     = &MoldUDP64{}
	_ gopacket.SerializableLayer = &MoldUDP64{}
)

func (m *MoldUDP64) LayerType() gopacket.LayerType {
	return LayerTypeMoldUDP64
}

func (m *MoldUDP64) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	blocks := m.Blocks[:0] // reuse the slice storage
	*m = MoldUDP64{}
	m.Blocks = blocks
	err := m.Packet.decode(data, itch.Messages)
	if m.Length > len(data) {
		m.Length = len(data)
	}
	m.BaseLayer = layers.BaseLayer{Contents: data[:m.Length], Payload: data[m.Length:]}
	if err != nil {
		df.SetTruncated()
	}
	return err
}

func (m *MoldUDP64) CanDecode() gopacket.LayerClass {
	return LayerTypeMoldUDP64
}

func (m *MoldUDP64) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func (m *MoldUDP64) Flow() gopacket.Flow {
	session := []byte(m.Session)
	return gopacket.NewFlow(EndpointMoldUDP64Session, session, session)
}

func decodeMoldUDP64(data []byte, p gopacket.PacketBuilder) error {
	m := &MoldUDP64{}
	if err := m.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(m)
	p.SetApplicationLayer(m)
	return nil
}

// Payload makes the layer an application layer; it returns the bytes
// following the last decoded block.
func (m *MoldUDP64) Payload() []byte {
	return m.BaseLayer.Payload
}

// SerializeTo prepends the header to the already serialized blocks. With
// FixLengths the message count is recomputed from them.
func (m *MoldUDP64) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) (err error) {
	defer errs.PassE(&err)
	if opts.FixLengths {
		m.MessageCount = uint16(countBlocks(b.Bytes()))
	}
	hdr, err := encodeHeader(m.Header)
	errs.CheckE(err)
	bytes, err := b.PrependBytes(HeaderLength)
	errs.CheckE(err)
	copy(bytes, hdr)
	return
}

func countBlocks(data []byte) (n int) {
	for len(data) >= 2 {
		length := int(binary.BigEndian.Uint16(data)) + 2
		if length > len(data) {
			break
		}
		data = data[length:]
		n++
	}
	return
}
