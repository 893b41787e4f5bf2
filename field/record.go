// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package field

import (
	"fmt"
	"strings"
)

// MessageType is the name of the leading tag field of every layout.
const MessageType = "Message Type"

type Entry struct {
	Name  string
	Value interface{}
}

// Record is a decoded message: field values in wire order.
type Record []Entry

func (r Record) Get(name string) (interface{}, bool) {
	for _, e := range r {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of name or appends a new entry.
func (r Record) Set(name string, v interface{}) Record {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = v
			return r
		}
	}
	return append(r, Entry{Name: name, Value: v})
}

func (r Record) Type() byte {
	v, _ := r.Get(MessageType)
	switch x := v.(type) {
	case byte:
		return x
	case Code:
		return byte(x.Wire)
	case string:
		if len(x) == 1 {
			return x[0]
		}
	}
	return 0
}

func (r Record) Uint(name string) uint64 {
	v, _ := r.Get(name)
	u, _ := toUint64(v)
	return u
}

func (r Record) Int(name string) int64 {
	v, _ := r.Get(name)
	i, _ := toInt64(v)
	return i
}

func (r Record) Char(name string) byte {
	v, _ := r.Get(name)
	switch x := v.(type) {
	case byte:
		return x
	case Code:
		return byte(x.Wire)
	}
	return 0
}

// Text returns the text value of name, "" when it holds no value.
func (r Record) Text(name string) string {
	v, _ := r.Get(name)
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}

func (r Record) Price(name string) float64 {
	v, _ := r.Get(name)
	p, _ := v.(float64)
	return p
}

func (r Record) Code(name string) Code {
	v, _ := r.Get(name)
	c, _ := v.(Code)
	return c
}

func (r Record) Uint96(name string) Uint96 {
	v, _ := r.Get(name)
	u, _ := v.(Uint96)
	return u
}

func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Name)
		sb.WriteString(": ")
		switch v := e.Value.(type) {
		case byte:
			fmt.Fprintf(&sb, "%q", rune(v))
		case string:
			fmt.Fprintf(&sb, "%q", v)
		case nil:
			sb.WriteString("-")
		default:
			fmt.Fprint(&sb, v)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
