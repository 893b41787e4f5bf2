// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

//go:build !unix

package feed

import (
	"net"
)

func setMulticastOpts(conn *net.UDPConn, ttl int, iface net.IP) error {
	return nil
}
