// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package field is the fixed width binary field codec shared by the ITCH,
// OUCH and SoupBinTCP layouts. All integers are big endian.
//
// Decoded values have these Go types:
//
//	Uint       uint64
//	Int        int64
//	Char       byte
//	Text       string, nil when the field holds only padding
//	Bytes      []byte, Uint96 with the BigEndianUint96 transform
//	Price      float64
//	ASCIIUint  uint64, nil when the field holds only padding
//
// Uint and Char fields with an Enum decode to Code instead.
package field

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
)

type Kind uint8

const (
	Uint Kind = iota
	Int
	Char
	Text
	Bytes
	Price
	ASCIIUint
)

var kindNames = [...]string{
	Uint:      "uint",
	Int:       "int",
	Char:      "char",
	Text:      "text",
	Bytes:     "bytes",
	Price:     "price",
	ASCIIUint: "ascii-uint",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Transform is applied to a Bytes field after the raw decode.
type Transform uint8

const (
	Raw Transform = iota
	BigEndianUint96
)

// PriceScale is the fixed point factor of Price fields.
const PriceScale = 100

type Field struct {
	Name      string
	Kind      Kind
	Width     int
	Pad       byte
	LeftPad   bool
	Transform Transform
	Enum      *Enum
}

func U8(name string) Field  { return Field{Name: name, Kind: Uint, Width: 1} }
func U16(name string) Field { return Field{Name: name, Kind: Uint, Width: 2} }
func U32(name string) Field { return Field{Name: name, Kind: Uint, Width: 4} }
func U64(name string) Field { return Field{Name: name, Kind: Uint, Width: 8} }
func I32(name string) Field { return Field{Name: name, Kind: Int, Width: 4} }
func I64(name string) Field { return Field{Name: name, Kind: Int, Width: 8} }
func C(name string) Field   { return Field{Name: name, Kind: Char, Width: 1} }
func P(name string) Field   { return Field{Name: name, Kind: Price, Width: 4} }

// T is a right padded text field.
func T(name string, width int) Field {
	return Field{Name: name, Kind: Text, Width: width, Pad: ' '}
}

// TL is a left padded text field.
func TL(name string, width int) Field {
	return Field{Name: name, Kind: Text, Width: width, Pad: ' ', LeftPad: true}
}

func B(name string, width int) Field {
	return Field{Name: name, Kind: Bytes, Width: width}
}

// A is an unsigned integer written as left padded ASCII digits.
func A(name string, width int) Field {
	return Field{Name: name, Kind: ASCIIUint, Width: width, Pad: ' ', LeftPad: true}
}

func (f Field) WithPad(pad byte) Field {
	f.Pad = pad
	return f
}
func (f Field) WithEnum(e *Enum) Field {
	f.Enum = e
	return f
}
func (f Field) WithTransform(t Transform) Field {
	f.Transform = t
	return f
}

// Decode reads the field from buf[offset:].
func (f *Field) Decode(buf []byte, offset int) (interface{}, error) {
	if offset < 0 || len(buf)-offset < f.Width {
		avail := len(buf) - offset
		if avail < 0 {
			avail = 0
		}
		return nil, truncated(f, offset, avail)
	}
	b := buf[offset : offset+f.Width]
	switch f.Kind {
	case Uint:
		v := decodeUint(b)
		if f.Enum != nil {
			return f.Enum.Lookup(v), nil
		}
		return v, nil
	case Int:
		return decodeInt(b), nil
	case Char:
		if f.Enum != nil {
			return f.Enum.Lookup(uint64(b[0])), nil
		}
		return b[0], nil
	case Text:
		s := f.unpad(b)
		if len(s) == 0 {
			return nil, nil
		}
		return string(s), nil
	case Bytes:
		if f.Transform == BigEndianUint96 {
			if f.Width != 12 {
				return nil, malformed(f, offset, "uint96 transform on %d byte field", f.Width)
			}
			return Uint96FromBytes(b), nil
		}
		return append([]byte(nil), b...), nil
	case Price:
		return float64(int32(binary.BigEndian.Uint32(b))) / PriceScale, nil
	case ASCIIUint:
		s := f.unpad(b)
		if len(s) == 0 {
			return nil, nil
		}
		for _, c := range s {
			if c < '0' || c > '9' {
				return nil, malformed(f, offset, "not an ASCII integer: %q", b)
			}
		}
		v, err := strconv.ParseUint(string(s), 10, 64)
		if err != nil {
			return nil, malformed(f, offset, "%s", err)
		}
		return v, nil
	}
	return nil, malformed(f, offset, "unsupported kind %s", f.Kind)
}

func (f *Field) unpad(b []byte) []byte {
	if f.LeftPad {
		return bytes.TrimLeft(b, string([]byte{f.Pad}))
	}
	return bytes.TrimRight(b, string([]byte{f.Pad}))
}

// AppendEncode appends the wire form of v. A nil value encodes the
// "no value" form: padding for text, zero for numbers.
func (f *Field) AppendEncode(dst []byte, v interface{}, offset int) ([]byte, error) {
	switch f.Kind {
	case Uint, Char:
		var w uint64
		if v != nil {
			var err error
			if w, err = f.wireCode(v, offset); err != nil {
				return dst, err
			}
		} else if f.Kind == Char {
			w = ' '
		}
		if f.Width < 8 && w >= 1<<(8*uint(f.Width)) {
			return dst, malformed(f, offset, "%d does not fit %d bytes", w, f.Width)
		}
		return appendUint(dst, w, f.Width), nil
	case Int:
		var i int64
		if v != nil {
			var ok bool
			if i, ok = toInt64(v); !ok {
				return dst, malformed(f, offset, "%T is not an integer", v)
			}
		}
		if f.Width < 8 {
			lim := int64(1) << (8*uint(f.Width) - 1)
			if i < -lim || i >= lim {
				return dst, malformed(f, offset, "%d does not fit %d bytes", i, f.Width)
			}
		}
		return appendUint(dst, uint64(i), f.Width), nil
	case Text:
		var s string
		switch x := v.(type) {
		case nil:
		case string:
			s = x
		case []byte:
			s = string(x)
		default:
			return dst, malformed(f, offset, "%T is not text", v)
		}
		return f.appendPadded(dst, s, offset)
	case Bytes:
		var b []byte
		switch x := v.(type) {
		case nil:
			b = make([]byte, f.Width)
		case []byte:
			b = x
		case string:
			b = []byte(x)
		case Uint96:
			var a [12]byte
			x.Put(a[:])
			b = a[:]
		default:
			return dst, malformed(f, offset, "%T is not bytes", v)
		}
		if len(b) != f.Width {
			return dst, malformed(f, offset, "%d bytes for %d byte field", len(b), f.Width)
		}
		return append(dst, b...), nil
	case Price:
		var p float64
		switch x := v.(type) {
		case nil:
		case float64:
			p = x
		case float32:
			p = float64(x)
		default:
			i, ok := toInt64(v)
			if !ok {
				return dst, malformed(f, offset, "%T is not a price", v)
			}
			p = float64(i)
		}
		scaled, err := EncodePrice(p)
		if err != nil {
			return dst, malformed(f, offset, "%s", err)
		}
		return appendUint(dst, uint64(uint32(scaled)), 4), nil
	case ASCIIUint:
		if v == nil {
			return f.appendPadded(dst, "", offset)
		}
		u, ok := toUint64(v)
		if !ok {
			return dst, malformed(f, offset, "%T is not an unsigned integer", v)
		}
		return f.appendPadded(dst, strconv.FormatUint(u, 10), offset)
	}
	return dst, malformed(f, offset, "unsupported kind %s", f.Kind)
}

func (f *Field) appendPadded(dst []byte, s string, offset int) ([]byte, error) {
	if len(s) > f.Width {
		return dst, malformed(f, offset, "%q is longer than %d bytes", s, f.Width)
	}
	pad := bytes.Repeat([]byte{f.Pad}, f.Width-len(s))
	if f.LeftPad {
		dst = append(dst, pad...)
		return append(dst, s...), nil
	}
	dst = append(dst, s...)
	return append(dst, pad...), nil
}

// wireCode resolves v to the integer written on the wire, validating it
// against the field enum if there is one.
func (f *Field) wireCode(v interface{}, offset int) (uint64, error) {
	if f.Enum != nil {
		switch x := v.(type) {
		case Code:
			if _, ok := f.Enum.Name(x.Wire); !ok {
				return 0, malformed(f, offset, "unmapped %s code %d", f.Enum, x.Wire)
			}
			return x.Wire, nil
		case string:
			if w, ok := f.Enum.Wire(x); ok {
				return w, nil
			}
			if f.Kind == Char && len(x) == 1 {
				if _, ok := f.Enum.Name(uint64(x[0])); ok {
					return uint64(x[0]), nil
				}
			}
			return 0, malformed(f, offset, "unmapped %s name %q", f.Enum, x)
		}
		w, ok := toUint64(v)
		if !ok {
			return 0, malformed(f, offset, "%T is not a %s code", v, f.Enum)
		}
		if _, ok := f.Enum.Name(w); !ok {
			return 0, malformed(f, offset, "unmapped %s code %d", f.Enum, w)
		}
		return w, nil
	}
	if s, ok := v.(string); ok && f.Kind == Char {
		if len(s) != 1 {
			return 0, malformed(f, offset, "%q is not a single character", s)
		}
		return uint64(s[0]), nil
	}
	w, ok := toUint64(v)
	if !ok {
		return 0, malformed(f, offset, "%T is not an unsigned integer", v)
	}
	return w, nil
}

// EncodePrice converts a price to its fixed point wire integer,
// round(p*100) with halves rounded away from zero.
func EncodePrice(p float64) (int32, error) {
	scaled := math.Round(p * PriceScale)
	if math.IsNaN(scaled) || scaled < math.MinInt32 || scaled > math.MaxInt32 {
		return 0, strconv.ErrRange
	}
	return int32(scaled), nil
}

func DecodePrice(v int32) float64 {
	return float64(v) / PriceScale
}

func decodeUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func decodeInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b)))
	}
	return int64(decodeUint(b))
}

func appendUint(dst []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}

func toUint64(v interface{}) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case uint32:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint:
		return uint64(x), true
	case Code:
		return x.Wire, true
	}
	i, ok := toInt64(v)
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case int:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint8:
		return int64(x), true
	}
	return 0, false
}
