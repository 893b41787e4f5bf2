// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package feed

import (
	"net"

	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/log"
)

// Sender writes MoldUDP64 packets to a UDP (usually multicast) group.
type Sender struct {
	conn *net.UDPConn
}

// Dial opens a socket to group. A non-empty iface is the IPv4 address of
// the outgoing multicast interface.
func Dial(group string, ttl int, iface string) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, errors.Wrap(err, "feed: group address")
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, errors.Wrap(err, "feed: dial")
	}
	var ifaddr net.IP
	if iface != "" {
		if ifaddr = net.ParseIP(iface).To4(); ifaddr == nil {
			conn.Close()
			return nil, errors.Errorf("feed: bad interface address %q", iface)
		}
	}
	if err := setMulticastOpts(conn, ttl, ifaddr); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "feed: socket options")
	}
	log.Printf("sending to %s ttl %d", raddr, ttl)
	return &Sender{conn: conn}, nil
}

func (s *Sender) Send(pkts ...[]byte) error {
	for _, p := range pkts {
		if _, err := s.conn.Write(p); err != nil {
			return errors.Wrap(err, "feed: send")
		}
	}
	return nil
}

func (s *Sender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
