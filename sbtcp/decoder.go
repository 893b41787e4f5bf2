// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package sbtcp

import (
	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/field"
)

// Decoder reassembles packets from a byte stream delivered in arbitrary
// pieces, such as TCP segments.
type Decoder struct {
	d   *Dialect
	buf []byte
	off int
	err error
}

func NewDecoder(d *Dialect) *Decoder {
	if d == nil {
		d = OUCH
	}
	return &Decoder{d: d}
}

// Write appends stream bytes. It never fails.
func (dec *Decoder) Write(p []byte) (int, error) {
	if dec.off > 0 && dec.off == len(dec.buf) {
		dec.buf = dec.buf[:0]
		dec.off = 0
	}
	dec.buf = append(dec.buf, p...)
	return len(p), nil
}

// Buffered is the number of bytes not yet consumed by Next.
func (dec *Decoder) Buffered() int {
	return len(dec.buf) - dec.off
}

// Next returns the next whole packet. ErrNeedMore means the remaining bytes
// do not hold one yet. Per packet diagnostics are returned with the packet
// skipped; after ErrFraming the decoder is stuck and keeps returning it.
func (dec *Decoder) Next() (Message, error) {
	if dec.err != nil {
		return nil, dec.err
	}
	m, n, err := dec.d.DecodeOne(dec.buf, dec.off)
	switch {
	case errors.Is(err, ErrNeedMore):
		dec.compact()
		return nil, err
	case errors.Is(err, ErrFraming):
		dec.err = err
		return nil, err
	}
	dec.off += n
	// the buffer is reused, detach what escapes
	if m != nil {
		c := m.getCommon()
		c.Payload = append([]byte(nil), c.Payload...)
		switch x := m.(type) {
		case *MessageSequencedData:
			detach(x.Err)
		case *MessageUnsequencedData:
			detach(x.Err)
		}
	}
	detach(err)
	return m, err
}

func detach(err error) {
	var ue *UnknownPacketError
	if errors.As(err, &ue) {
		ue.Raw = append([]byte(nil), ue.Raw...)
	}
	var ume *field.UnknownMessageError
	if errors.As(err, &ume) {
		ume.Raw = append([]byte(nil), ume.Raw...)
	}
}

// compact moves the unconsumed tail to the front of the buffer.
func (dec *Decoder) compact() {
	if dec.off == 0 {
		return
	}
	n := copy(dec.buf, dec.buf[dec.off:])
	dec.buf = dec.buf[:n]
	dec.off = 0
}
