// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package field

import (
	"fmt"

	"github.com/pkg/errors"
)

// Spec is the fixed layout of one message type. Specs are built once at
// package init and never mutated.
type Spec struct {
	Tag    byte
	Name   string
	Fields []Field
	width  int
	index  map[string]int
}

// NewSpec builds a layout whose first field is the one byte Message Type tag.
func NewSpec(tag byte, name string, fields ...Field) *Spec {
	s := &Spec{
		Tag:    tag,
		Name:   name,
		Fields: append([]Field{C(MessageType)}, fields...),
		index:  make(map[string]int, len(fields)+1),
	}
	for i, f := range s.Fields {
		if _, ok := s.index[f.Name]; ok {
			panic(fmt.Sprintf("spec %s: duplicate field %q", name, f.Name))
		}
		if f.Width <= 0 {
			panic(fmt.Sprintf("spec %s: field %q has width %d", name, f.Name, f.Width))
		}
		s.index[f.Name] = i
		s.width += f.Width
	}
	return s
}

func (s *Spec) String() string {
	return fmt.Sprintf("%s(%q)", s.Name, s.Tag)
}

// Width is the wire size of the message including the tag byte.
func (s *Spec) Width() int {
	return s.width
}

func (s *Spec) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

// Decode reads one message from buf[offset:]. Trailing bytes past Width are
// ignored.
func (s *Spec) Decode(buf []byte, offset int) (Record, error) {
	r := make(Record, 0, len(s.Fields))
	pos := offset
	for i := range s.Fields {
		f := &s.Fields[i]
		v, err := f.Decode(buf, pos)
		if err != nil {
			return nil, errors.WithMessage(err, s.Name)
		}
		r = append(r, Entry{Name: f.Name, Value: v})
		pos += f.Width
	}
	if t := r.Type(); t != s.Tag {
		return nil, errors.WithMessage(malformed(&s.Fields[0], offset, "tag %q for %s", t, s), s.Name)
	}
	return r, nil
}

func (s *Spec) Encode(r Record) ([]byte, error) {
	return s.AppendEncode(make([]byte, 0, s.width), r)
}

// AppendEncode appends the wire form of r. Fields missing from r encode as
// "no value"; the tag defaults to the spec tag. Entries naming no field of
// the layout are rejected.
func (s *Spec) AppendEncode(dst []byte, r Record) ([]byte, error) {
	for _, e := range r {
		if _, ok := s.index[e.Name]; !ok {
			return dst, errors.WithMessage(&Error{Field: e.Name, Err: ErrMalformed, Detail: "no such field in " + s.Name}, s.Name)
		}
	}
	if t, ok := r.Get(MessageType); ok && t != nil && r.Type() != s.Tag {
		return dst, errors.WithMessage(&Error{Field: MessageType, Err: ErrMalformed, Detail: fmt.Sprintf("%v is not %s", t, s)}, s.Name)
	}
	start := len(dst)
	for i := range s.Fields {
		f := &s.Fields[i]
		v, _ := r.Get(f.Name)
		if i == 0 {
			v = s.Tag
		}
		var err error
		if dst, err = f.AppendEncode(dst, v, len(dst)-start); err != nil {
			return dst[:start], errors.WithMessage(err, s.Name)
		}
	}
	return dst, nil
}

// Table is a static registry of the layouts of one protocol direction.
type Table struct {
	name  string
	specs [256]*Spec
	order []*Spec
}

// NewTable panics on duplicate tags.
func NewTable(name string, specs ...*Spec) *Table {
	t := &Table{name: name}
	for _, s := range specs {
		if t.specs[s.Tag] != nil {
			panic(fmt.Sprintf("table %s: duplicate tag %q (%s, %s)", name, s.Tag, t.specs[s.Tag].Name, s.Name))
		}
		t.specs[s.Tag] = s
		t.order = append(t.order, s)
	}
	return t
}

func (t *Table) String() string {
	return t.name
}

func (t *Table) Lookup(tag byte) (*Spec, bool) {
	s := t.specs[tag]
	return s, s != nil
}

func (t *Table) Specs() []*Spec {
	return t.order
}

// Decode reads the message starting at buf[offset]. An unregistered tag
// yields an *UnknownMessageError carrying the raw bytes.
func (t *Table) Decode(buf []byte, offset int) (Record, error) {
	if offset < 0 || offset >= len(buf) {
		f := C(MessageType)
		return nil, truncated(&f, offset, 0)
	}
	tag := buf[offset]
	s := t.specs[tag]
	if s == nil {
		return nil, &UnknownMessageError{
			Table:  t.name,
			Offset: offset,
			Tag:    tag,
			Raw:    buf[offset:],
		}
	}
	return s.Decode(buf, offset)
}

func (t *Table) Encode(r Record) ([]byte, error) {
	tag := r.Type()
	s := t.specs[tag]
	if s == nil {
		return nil, &UnknownMessageError{Table: t.name, Tag: tag}
	}
	return s.Encode(r)
}
