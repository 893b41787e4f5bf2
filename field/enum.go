// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package field

import (
	"fmt"
	"sort"
)

const UnknownCode = "unknown code"

// Code is the decoded value of an enumerated field.
type Code struct {
	Wire  uint64
	Name  string
	Known bool
}

func (c Code) String() string {
	if c.Wire >= ' ' && c.Wire <= '~' {
		return fmt.Sprintf("%s(%q)", c.Name, rune(c.Wire))
	}
	return fmt.Sprintf("%s(%d)", c.Name, c.Wire)
}

type EnumValue struct {
	Name string
	Wire uint64
}

// Enum is a static bidirectional mapping between symbolic names and wire
// codes. Unmapped codes never fall back to a default.
type Enum struct {
	name   string
	byWire map[uint64]string
	byName map[string]uint64
}

func NewEnum(name string, values ...EnumValue) *Enum {
	e := &Enum{
		name:   name,
		byWire: make(map[uint64]string, len(values)),
		byName: make(map[string]uint64, len(values)),
	}
	for _, v := range values {
		if _, ok := e.byWire[v.Wire]; ok {
			panic(fmt.Sprintf("enum %s: duplicate code %d", name, v.Wire))
		}
		if _, ok := e.byName[v.Name]; ok {
			panic(fmt.Sprintf("enum %s: duplicate name %q", name, v.Name))
		}
		e.byWire[v.Wire] = v.Name
		e.byName[v.Name] = v.Wire
	}
	return e
}

func (e *Enum) String() string {
	return e.name
}

func (e *Enum) Lookup(wire uint64) Code {
	if name, ok := e.byWire[wire]; ok {
		return Code{Wire: wire, Name: name, Known: true}
	}
	return Code{Wire: wire, Name: UnknownCode}
}

func (e *Enum) Wire(name string) (uint64, bool) {
	w, ok := e.byName[name]
	return w, ok
}

func (e *Enum) Name(wire uint64) (string, bool) {
	n, ok := e.byWire[wire]
	return n, ok
}

// Code returns the known code with the given symbolic name.
func (e *Enum) Code(name string) (Code, bool) {
	w, ok := e.byName[name]
	if !ok {
		return Code{}, false
	}
	return Code{Wire: w, Name: name, Known: true}, true
}

func (e *Enum) Values() []EnumValue {
	vs := make([]EnumValue, 0, len(e.byWire))
	for w, n := range e.byWire {
		vs = append(vs, EnumValue{Name: n, Wire: w})
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Wire < vs[j].Wire })
	return vs
}
