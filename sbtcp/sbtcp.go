// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package sbtcp implements SoupBinTCP framing: a 2 byte big endian length
// counting the packet type byte and the payload, the packet type, then the
// payload.
package sbtcp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/itch"
	"github.com/ForrestLi/ITCH-OUCH-tool/ouch"
)

type MessageType byte

const (
	TypeDebug         MessageType = '+'
	TypeLoginAccepted MessageType = 'A'
	TypeLoginRejected MessageType = 'J'
	TypeSequencedData MessageType = 'S'
	TypeHeartbeat     MessageType = 'H'
	TypeEnd           MessageType = 'Z'

	TypeLoginRequest    MessageType = 'L'
	TypeUnsequencedData MessageType = 'U'
	TypeClientHeartbeat MessageType = 'R'
	TypeLogout          MessageType = 'O'
)

// HeaderLength covers the length field and the packet type.
const HeaderLength = 3

// NeedMore is the consumed count reported with ErrNeedMore.
const NeedMore = -1

var (
	// ErrNeedMore means the buffer ends inside a packet; retry once more
	// bytes have arrived.
	ErrNeedMore = errors.New("sbtcp: need more bytes")
	// ErrFraming reports a length field that cannot be right. The stream
	// has no recoverable boundary after it.
	ErrFraming = errors.New("sbtcp: framing error")
)

// UnknownPacketError is the diagnostic for a packet type outside the
// protocol. The declared length is still valid, so decoding goes on with the
// next packet.
type UnknownPacketError struct {
	Offset     int
	Length     int
	PacketType byte
	Raw        []byte
}

func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("sbtcp: unknown packet type %q at offset %d, length %d", e.PacketType, e.Offset, e.Length)
}

// Dialect selects the codec of the application payloads.
type Dialect struct {
	Name        string
	Sequenced   *field.Table
	Unsequenced *field.Table
}

var (
	// OUCH order entry: responses are sequenced, requests unsequenced.
	OUCH = &Dialect{Name: "ouch", Sequenced: ouch.Responses, Unsequenced: ouch.Requests}
	// Glimpse snapshots carry ITCH messages as sequenced data.
	Glimpse = &Dialect{Name: "glimpse", Sequenced: itch.Messages}
)

var LoginRejectReason = field.NewEnum("LoginRejectReason",
	field.EnumValue{Name: "Not authorized", Wire: 'A'},
	field.EnumValue{Name: "Session not available", Wire: 'S'},
)

var (
	loginRequestSpec = field.NewSpec(byte(TypeLoginRequest), "LoginRequest",
		field.T("Username", 6),
		field.T("Password", 10),
		field.T("RequestedSession", 10),
		field.A("RequestedSequenceNumber", 20),
	)
	loginAcceptedSpec = field.NewSpec(byte(TypeLoginAccepted), "LoginAccepted",
		field.T("Session", 10),
		field.A("SequenceNumber", 20),
	)
	loginRejectedSpec = field.NewSpec(byte(TypeLoginRejected), "LoginRejected",
		field.C("RejectReasonCode").WithEnum(LoginRejectReason),
	)
)

type Message interface {
	Type() MessageType
	getCommon() *MessageCommon
	decodePayload(buf []byte, at int, d *Dialect) error
	encodePayload() error
}

// MessageCommon holds the raw payload, without the packet type byte.
type MessageCommon struct {
	Payload []byte
}

func (mc *MessageCommon) getCommon() *MessageCommon {
	return mc
}
func (mc *MessageCommon) decodePayload(buf []byte, at int, d *Dialect) error {
	return nil
}
func (mc *MessageCommon) encodePayload() error {
	return nil
}
func (mc *MessageCommon) SetPayload(data []byte) {
	mc.Payload = data
}

type MessageDebug struct {
	MessageCommon
}

func (m *MessageDebug) Type() MessageType { return TypeDebug }
func (m *MessageDebug) Text() string      { return string(m.Payload) }

type MessageLoginAccepted struct {
	MessageCommon
	Session        string
	SequenceNumber uint64
}

func (m *MessageLoginAccepted) Type() MessageType { return TypeLoginAccepted }
func (m *MessageLoginAccepted) decodePayload(buf []byte, at int, d *Dialect) error {
	r, err := loginAcceptedSpec.Decode(buf, at)
	if err != nil {
		return err
	}
	m.Session = r.Text("Session")
	m.SequenceNumber = r.Uint("SequenceNumber")
	return nil
}
func (m *MessageLoginAccepted) encodePayload() (err error) {
	m.Payload, err = encodeControl(loginAcceptedSpec, field.Record{
		{Name: "Session", Value: m.Session},
		{Name: "SequenceNumber", Value: m.SequenceNumber},
	})
	return
}

type MessageLoginRejected struct {
	MessageCommon
	Reason field.Code
}

func (m *MessageLoginRejected) Type() MessageType { return TypeLoginRejected }
func (m *MessageLoginRejected) decodePayload(buf []byte, at int, d *Dialect) error {
	r, err := loginRejectedSpec.Decode(buf, at)
	if err != nil {
		return err
	}
	m.Reason = r.Code("RejectReasonCode")
	return nil
}
func (m *MessageLoginRejected) encodePayload() (err error) {
	m.Payload, err = encodeControl(loginRejectedSpec, field.Record{
		{Name: "RejectReasonCode", Value: m.Reason},
	})
	return
}

// MessageSequencedData is server to client application data. Data is the
// decoded inner message; Err is its diagnostic when it could not be decoded.
type MessageSequencedData struct {
	MessageCommon
	Data field.Record
	Err  error
}

func (m *MessageSequencedData) Type() MessageType { return TypeSequencedData }
func (m *MessageSequencedData) decodePayload(buf []byte, at int, d *Dialect) error {
	if d != nil && d.Sequenced != nil {
		m.Data, m.Err = d.Sequenced.Decode(buf, at+1)
	}
	return nil
}

type MessageHeartbeat struct {
	MessageCommon
}

func (m *MessageHeartbeat) Type() MessageType { return TypeHeartbeat }

type MessageEnd struct {
	MessageCommon
}

func (m *MessageEnd) Type() MessageType { return TypeEnd }

type MessageLoginRequest struct {
	MessageCommon
	Username       string
	Password       string
	Session        string
	SequenceNumber uint64
}

func (m *MessageLoginRequest) Type() MessageType { return TypeLoginRequest }
func (m *MessageLoginRequest) decodePayload(buf []byte, at int, d *Dialect) error {
	r, err := loginRequestSpec.Decode(buf, at)
	if err != nil {
		return err
	}
	m.Username = r.Text("Username")
	m.Password = r.Text("Password")
	m.Session = r.Text("RequestedSession")
	m.SequenceNumber = r.Uint("RequestedSequenceNumber")
	return nil
}
func (m *MessageLoginRequest) encodePayload() (err error) {
	m.Payload, err = encodeControl(loginRequestSpec, field.Record{
		{Name: "Username", Value: m.Username},
		{Name: "Password", Value: m.Password},
		{Name: "RequestedSession", Value: m.Session},
		{Name: "RequestedSequenceNumber", Value: m.SequenceNumber},
	})
	return
}

// MessageUnsequencedData is client to server application data.
type MessageUnsequencedData struct {
	MessageCommon
	Data field.Record
	Err  error
}

func (m *MessageUnsequencedData) Type() MessageType { return TypeUnsequencedData }
func (m *MessageUnsequencedData) decodePayload(buf []byte, at int, d *Dialect) error {
	if d != nil && d.Unsequenced != nil {
		m.Data, m.Err = d.Unsequenced.Decode(buf, at+1)
	}
	return nil
}

type MessageClientHeartbeat struct {
	MessageCommon
}

func (m *MessageClientHeartbeat) Type() MessageType { return TypeClientHeartbeat }

type MessageLogout struct {
	MessageCommon
}

func (m *MessageLogout) Type() MessageType { return TypeLogout }

func newMessage(t MessageType) Message {
	switch t {
	case TypeDebug:
		return &MessageDebug{}
	case TypeLoginAccepted:
		return &MessageLoginAccepted{}
	case TypeLoginRejected:
		return &MessageLoginRejected{}
	case TypeSequencedData:
		return &MessageSequencedData{}
	case TypeHeartbeat:
		return &MessageHeartbeat{}
	case TypeEnd:
		return &MessageEnd{}
	case TypeLoginRequest:
		return &MessageLoginRequest{}
	case TypeUnsequencedData:
		return &MessageUnsequencedData{}
	case TypeClientHeartbeat:
		return &MessageClientHeartbeat{}
	case TypeLogout:
		return &MessageLogout{}
	}
	return nil
}

func encodeControl(s *field.Spec, r field.Record) ([]byte, error) {
	b, err := s.Encode(r)
	if err != nil {
		return nil, err
	}
	return b[1:], nil
}

// DecodeOne decodes the OUCH session packet starting at buf[offset].
func DecodeOne(buf []byte, offset int) (Message, int, error) {
	return OUCH.DecodeOne(buf, offset)
}

// DecodeOne decodes the packet starting at buf[offset] and returns it with
// the number of bytes it occupies. When the buffer ends inside the packet it
// returns ErrNeedMore and NeedMore. An unknown packet type or an undecodable
// control payload is reported as an error together with a valid consumed
// count.
func (d *Dialect) DecodeOne(buf []byte, offset int) (Message, int, error) {
	if len(buf)-offset < 2 {
		return nil, NeedMore, ErrNeedMore
	}
	length := int(binary.BigEndian.Uint16(buf[offset:]))
	if length < 1 {
		return nil, 0, errors.Wrapf(ErrFraming, "zero length packet at offset %d", offset)
	}
	end := offset + 2 + length
	if end > len(buf) {
		return nil, NeedMore, ErrNeedMore
	}
	at := offset + 2
	t := MessageType(buf[at])
	m := newMessage(t)
	if m == nil {
		return nil, end - offset, &UnknownPacketError{
			Offset:     offset,
			Length:     length,
			PacketType: byte(t),
			Raw:        buf[offset:end],
		}
	}
	m.getCommon().Payload = buf[at+1 : end]
	if err := m.decodePayload(buf[:end], at, d); err != nil {
		return nil, end - offset, errors.WithMessagef(err, "sbtcp: %c packet at offset %d", t, offset)
	}
	return m, end - offset, nil
}

// Encode returns the framed packet of m.
func Encode(m Message) ([]byte, error) {
	return AppendEncode(nil, m)
}

func AppendEncode(dst []byte, m Message) ([]byte, error) {
	if err := m.encodePayload(); err != nil {
		return dst, err
	}
	payload := m.getCommon().Payload
	if len(payload)+1 > math.MaxUint16 {
		return dst, errors.Wrapf(ErrFraming, "payload of %d bytes", len(payload))
	}
	var hdr [HeaderLength]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(payload)+1))
	hdr[2] = byte(m.Type())
	dst = append(dst, hdr[:]...)
	return append(dst, payload...), nil
}

// ReadMessage reads one OUCH session packet.
func ReadMessage(r io.Reader) (Message, error) {
	return OUCH.ReadMessage(r)
}

// ReadMessage blocks until a whole packet has been read from r. A clean end
// of stream before the header is io.EOF, inside a packet
// io.ErrUnexpectedEOF.
func (d *Dialect) ReadMessage(r io.Reader) (m Message, err error) {
	defer errs.PassE(&err)
	buf := make([]byte, 2, 64)
	_, err = io.ReadFull(r, buf)
	errs.CheckE(err)
	length := int(binary.BigEndian.Uint16(buf))
	errs.CheckE(checkLength(length))
	buf = append(buf, make([]byte, length)...)
	_, err = io.ReadFull(r, buf[2:])
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	errs.CheckE(err)
	m, _, err = d.DecodeOne(buf, 0)
	errs.CheckE(err)
	return
}

func checkLength(length int) error {
	if length < 1 {
		return errors.Wrap(ErrFraming, "zero length packet")
	}
	return nil
}

func WriteMessage(w io.Writer, m Message) (err error) {
	defer errs.PassE(&err)
	b, err := Encode(m)
	errs.CheckE(err)
	n, err := w.Write(b)
	errs.CheckE(err)
	errs.Check(n == len(b), n, len(b))
	return
}
