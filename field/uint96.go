// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package field

import (
	"encoding/binary"
	"math/big"
)

// Uint96 is a 12 byte big endian unsigned integer (ITCH/OUCH Match ID).
type Uint96 struct {
	Hi uint32
	Lo uint64
}

func Uint96FromBytes(b []byte) Uint96 {
	return Uint96{
		Hi: binary.BigEndian.Uint32(b[0:4]),
		Lo: binary.BigEndian.Uint64(b[4:12]),
	}
}

func Uint96FromUint64(v uint64) Uint96 {
	return Uint96{Lo: v}
}

func (u Uint96) Put(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], u.Hi)
	binary.BigEndian.PutUint64(b[4:12], u.Lo)
}

func (u Uint96) Big() *big.Int {
	v := new(big.Int).SetUint64(uint64(u.Hi))
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u Uint96) String() string {
	if u.Hi == 0 {
		return big.NewInt(0).SetUint64(u.Lo).String()
	}
	return u.Big().String()
}
