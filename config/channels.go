// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package config

import (
	"io"
	"net"
	"strings"

	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
)

// Channels is a list of MoldUDP64 feed addresses given by preset name or
// host:port.
type Channels interface {
	LoadFromReader(rd io.Reader) error
	LoadFromStr(nameOrAddr string) error
	Addrs() []string
}

type channels struct {
	addrs []string
}

var _ Channels = &channels{}

func NewChannels() Channels {
	return &channels{}
}

var presets = map[string][]string{
	"asx-demo": {"239.1.1.1:19900"},
	"local":    {"127.0.0.1:19900"},
}

func (c *channels) LoadFromReader(rd io.Reader) (err error) {
	defer errs.PassE(&err)
	all, err := io.ReadAll(rd)
	errs.CheckE(err)
	for _, str := range strings.Fields(string(all)) {
		errs.CheckE(c.LoadFromStr(str))
	}
	return
}

func (c *channels) LoadFromStr(nameOrAddr string) (err error) {
	defer errs.PassE(&err)
	if addrs, ok := presets[nameOrAddr]; ok {
		c.addrs = append(c.addrs, addrs...)
		return
	}
	_, err = net.ResolveUDPAddr("udp", nameOrAddr)
	errs.CheckE(err, "channel", nameOrAddr)
	c.addrs = append(c.addrs, nameOrAddr)
	return
}

func (c *channels) Addrs() []string {
	return c.addrs
}
