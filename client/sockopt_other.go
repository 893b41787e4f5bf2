// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

//go:build !unix

package client

import (
	"syscall"
)

func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}

func addrBusy(err error) bool {
	return false
}
