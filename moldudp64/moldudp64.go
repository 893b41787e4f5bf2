// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package moldudp64 frames ITCH messages into MoldUDP64 packets: a 20 byte
// header followed by length prefixed message blocks.
package moldudp64

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/itch"
)

const (
	HeaderLength  = 20
	SessionLength = 10

	// HeartbeatCount marks a packet without messages.
	HeartbeatCount = 0
	// EndOfSessionCount marks the last packet of a session.
	EndOfSessionCount = math.MaxUint16
)

var ErrFraming = errors.New("moldudp64 framing error")

type Header struct {
	Session        string `struc:"[10]byte"`
	SequenceNumber uint64
	MessageCount   uint16
}

func (h *Header) IsHeartbeat() bool    { return h.MessageCount == HeartbeatCount }
func (h *Header) IsEndOfSession() bool { return h.MessageCount == EndOfSessionCount }

func (h Header) String() string {
	return fmt.Sprintf("session %q seq %d count %d", h.Session, h.SequenceNumber, h.MessageCount)
}

// Block is one decoded message block. Offset is the packet offset of the
// block length prefix; Data holds the Length message bytes following it.
// Err carries the per message diagnostic (unknown tag, truncated layout),
// which never stops the remaining blocks from being decoded.
type Block struct {
	Offset  int
	Length  int
	Data    []byte
	Message field.Record
	Err     error
}

type Packet struct {
	Header
	Blocks []Block
	// Length is the number of packet bytes consumed by the header and blocks.
	Length int
}

// Decode decodes a packet of ITCH messages.
func Decode(buf []byte) (*Packet, error) {
	return DecodeWith(buf, itch.Messages)
}

// DecodeWith decodes a packet whose blocks hold messages of table. On a
// framing error the blocks decoded so far are returned along with the
// error; the rest of the packet is lost.
func DecodeWith(buf []byte, table *field.Table) (*Packet, error) {
	p := &Packet{}
	if err := p.decode(buf, table); err != nil {
		return p, err
	}
	return p, nil
}

func (p *Packet) decode(buf []byte, table *field.Table) error {
	if len(buf) < HeaderLength {
		return errors.Wrapf(ErrFraming, "packet of %d bytes is shorter than the header", len(buf))
	}
	p.Header = Header{
		Session:        string(buf[0:10]),
		SequenceNumber: binary.BigEndian.Uint64(buf[10:18]),
		MessageCount:   binary.BigEndian.Uint16(buf[18:20]),
	}
	p.Blocks = p.Blocks[:0]
	p.Length = HeaderLength
	if p.IsEndOfSession() {
		return nil
	}
	off := HeaderLength
	for i := 0; i < int(p.MessageCount); i++ {
		if len(buf)-off < 2 {
			return errors.Wrapf(ErrFraming, "block %d at offset %d: no length prefix", i, off)
		}
		length := int(binary.BigEndian.Uint16(buf[off:]))
		if length == 0 {
			return errors.Wrapf(ErrFraming, "block %d at offset %d: zero length", i, off)
		}
		start := off + 2
		end := start + length
		if end > len(buf) {
			return errors.Wrapf(ErrFraming, "block %d at offset %d: length %d exceeds packet", i, off, length)
		}
		b := Block{
			Offset: off,
			Length: length,
			Data:   buf[start:end],
		}
		b.Message, b.Err = table.Decode(buf[:end], start)
		p.Blocks = append(p.Blocks, b)
		off = end
		p.Length = off
	}
	return nil
}

// Encode builds a packet carrying msgs; the message count is set from msgs.
func Encode(h Header, msgs ...[]byte) (bs []byte, err error) {
	defer errs.PassE(&err)
	type messageBlock struct {
		MessageLength uint16 `struc:"sizeof=Payload"`
		Payload       []byte
	}
	errs.Check(len(msgs) < EndOfSessionCount, "too many messages", len(msgs))
	h.MessageCount = uint16(len(msgs))
	var bb bytes.Buffer
	errs.CheckE(packHeader(&bb, h))
	for i, m := range msgs {
		errs.Check(len(m) > 0 && len(m) <= math.MaxUint16, "bad block length", i, len(m))
		errs.CheckE(struc.Pack(&bb, &messageBlock{Payload: m}))
	}
	bs = bb.Bytes()
	return
}

// EncodeRecords encodes ITCH records and frames them into one packet.
func EncodeRecords(h Header, records ...field.Record) ([]byte, error) {
	msgs := make([][]byte, 0, len(records))
	for _, r := range records {
		m, err := itch.Encode(r)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return Encode(h, msgs...)
}

func EncodeHeartbeat(session string, nextSeq uint64) ([]byte, error) {
	return encodeHeader(Header{Session: session, SequenceNumber: nextSeq, MessageCount: HeartbeatCount})
}

func EncodeEndOfSession(session string, nextSeq uint64) ([]byte, error) {
	return encodeHeader(Header{Session: session, SequenceNumber: nextSeq, MessageCount: EndOfSessionCount})
}

func encodeHeader(h Header) ([]byte, error) {
	var bb bytes.Buffer
	if err := packHeader(&bb, h); err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

// packHeader writes the header with the session right padded with spaces.
func packHeader(bb *bytes.Buffer, h Header) error {
	if len(h.Session) > SessionLength {
		return errors.Wrapf(ErrFraming, "session %q is longer than %d bytes", h.Session, SessionLength)
	}
	h.Session += strings.Repeat(" ", SessionLength-len(h.Session))
	return struc.Pack(bb, &h)
}
