// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package moldudp64

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/itch"
)

func seconds(s uint32) field.Record {
	return field.Record{
		{Name: field.MessageType, Value: byte(itch.TypeSeconds)},
		{Name: itch.FieldSecond, Value: uint64(s)},
	}
}

func TestDecodeSeconds(t *testing.T) {
	buf := []byte("0123456789")
	buf = append(buf, 0, 0, 0, 0, 0, 0x01, 0x24, 0xe2) // 74978
	buf = append(buf, 0, 1)
	buf = append(buf, 0, 5, 'T', 0x65, 0x53, 0xf1, 0x00)

	p, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	wantHeader := Header{Session: "0123456789", SequenceNumber: 74978, MessageCount: 1}
	if diff := cmp.Diff(wantHeader, p.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if len(p.Blocks) != 1 {
		t.Fatalf("%d blocks", len(p.Blocks))
	}
	b := p.Blocks[0]
	if b.Offset != 20 || b.Length != 5 || b.Err != nil {
		t.Errorf("block %+v", b)
	}
	if diff := cmp.Diff(seconds(1700000000), b.Message); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
	if p.Length != len(buf) {
		t.Errorf("consumed %d of %d bytes", p.Length, len(buf))
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 50} {
		var in []field.Record
		for i := 0; i < n; i++ {
			in = append(in, seconds(uint32(1000+i)))
		}
		buf, err := EncodeRecords(Header{Session: "SESS", SequenceNumber: 10}, in...)
		if err != nil {
			t.Fatal(err)
		}
		if want := HeaderLength + n*(2+5); len(buf) != want {
			t.Errorf("n=%d: packet of %d bytes, want %d", n, len(buf), want)
		}
		p, err := Decode(buf)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if p.Session != "SESS      " || p.SequenceNumber != 10 || int(p.MessageCount) != n {
			t.Errorf("n=%d: header %v", n, p.Header)
		}
		if len(p.Blocks) != n {
			t.Fatalf("n=%d: %d blocks", n, len(p.Blocks))
		}
		for i, b := range p.Blocks {
			if diff := cmp.Diff(in[i], b.Message); diff != "" {
				t.Errorf("n=%d block %d mismatch (-want +got):\n%s", n, i, diff)
			}
		}
		if p.Length != len(buf) {
			t.Errorf("n=%d: consumed %d of %d bytes", n, p.Length, len(buf))
		}
	}
}

func TestUnknownTagContinues(t *testing.T) {
	first, _ := itch.Encode(seconds(1))
	last, _ := itch.Encode(seconds(3))
	buf, err := Encode(Header{Session: "S"}, first, []byte{'Q', 1, 2}, last)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Blocks) != 3 {
		t.Fatalf("%d blocks", len(p.Blocks))
	}
	var ue *field.UnknownMessageError
	if !errors.As(p.Blocks[1].Err, &ue) {
		t.Fatalf("block 1 error %v", p.Blocks[1].Err)
	}
	if ue.Offset != 20+7+2 || ue.Tag != 'Q' || len(ue.Raw) != 3 {
		t.Errorf("diagnostic %+v", ue)
	}
	if p.Blocks[2].Err != nil || p.Blocks[2].Message.Uint(itch.FieldSecond) != 3 {
		t.Errorf("block after unknown tag %+v", p.Blocks[2])
	}
}

func TestFramingErrors(t *testing.T) {
	good, _ := itch.Encode(seconds(1))
	pkt, err := Encode(Header{Session: "S"}, good, good)
	if err != nil {
		t.Fatal(err)
	}
	zero := append([]byte(nil), pkt...)
	zero[20+7] = 0
	zero[20+7+1] = 0

	tests := []struct {
		name   string
		in     []byte
		blocks int
	}{
		{"short header", pkt[:12], 0},
		{"zero length", zero, 1},
		{"block past end", pkt[:len(pkt)-1], 1},
		{"missing prefix", pkt[:20+7+1], 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.in)
			if !errors.Is(err, ErrFraming) {
				t.Fatalf("error = %v, want ErrFraming", err)
			}
			if len(p.Blocks) != tt.blocks {
				t.Errorf("%d blocks decoded before the error, want %d", len(p.Blocks), tt.blocks)
			}
		})
	}
}

func TestControlPackets(t *testing.T) {
	hb, err := EncodeHeartbeat("S", 42)
	if err != nil {
		t.Fatal(err)
	}
	eos, err := EncodeEndOfSession("S", 43)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		in        []byte
		heartbeat bool
	}{{hb, true}, {eos, false}} {
		p, err := Decode(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if p.IsHeartbeat() != tt.heartbeat || p.IsEndOfSession() == tt.heartbeat || len(p.Blocks) != 0 {
			t.Errorf("packet %v", p.Header)
		}
	}
	if _, err := EncodeHeartbeat("SESSION-TOO-LONG", 1); !errors.Is(err, ErrFraming) {
		t.Errorf("long session error = %v", err)
	}
}

func TestGopacketLayer(t *testing.T) {
	RegisterUDPPort(30001)
	msg, _ := itch.Encode(seconds(1700000000))
	mold, err := Encode(Header{Session: "0123456789", SequenceNumber: 5}, msg)
	if err != nil {
		t.Fatal(err)
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: 30001}
	buf := gopacket.NewSerializeBuffer()
	err = gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, udp, gopacket.Payload(mold))
	if err != nil {
		t.Fatal(err)
	}
	pkt := gopacket.NewPacket(buf.Bytes(), layers.LayerTypeUDP, gopacket.Default)
	l, ok := pkt.Layer(LayerTypeMoldUDP64).(*MoldUDP64)
	if !ok {
		t.Fatalf("no MoldUDP64 layer in %v", pkt)
	}
	if l.SequenceNumber != 5 || len(l.Blocks) != 1 || l.Blocks[0].Message.Uint(itch.FieldSecond) != 1700000000 {
		t.Errorf("layer %+v", l.Packet)
	}
	if got := l.Flow().Src().String(); got != "0123456789" {
		t.Errorf("flow endpoint %q", got)
	}
}

func TestSerializeLayer(t *testing.T) {
	msg, _ := itch.Encode(seconds(9))
	buf := gopacket.NewSerializeBuffer()
	m := &MoldUDP64{Packet: Packet{Header: Header{Session: "0123456789", SequenceNumber: 77}}}
	block := append([]byte{0, byte(len(msg))}, msg...)
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, m, gopacket.Payload(block))
	if err != nil {
		t.Fatal(err)
	}
	p, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if p.MessageCount != 1 || p.SequenceNumber != 77 || p.Blocks[0].Message.Uint(itch.FieldSecond) != 9 {
		t.Errorf("packet %+v", p)
	}
}
