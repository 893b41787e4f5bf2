// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

//go:build unix

package feed

import (
	"net"

	"golang.org/x/sys/unix"
)

func setMulticastOpts(conn *net.UDPConn, ttl int, iface net.IP) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	err = rc.Control(func(fd uintptr) {
		if ttl > 0 {
			if serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_MULTICAST_TTL, ttl); serr != nil {
				return
			}
		}
		if iface != nil {
			var a [4]byte
			copy(a[:], iface)
			serr = unix.SetsockoptInet4Addr(int(fd), unix.IPPROTO_IP, unix.IP_MULTICAST_IF, a)
		}
	})
	if err != nil {
		return err
	}
	return serr
}
