// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package cmd

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/config"
	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/feed"
	"github.com/ForrestLi/ITCH-OUCH-tool/log"
)

type cmdMoldSend struct {
	Channels  []string      `long:"channel" short:"c" value-name:"PRESET|ADDR" description:"destination group, repeatable (default asx-demo)"`
	Config    string        `long:"config" value-name:"YAML" description:"read the feed section of this file"`
	TTL       int           `long:"ttl" default:"20" description:"multicast TTL"`
	Interface string        `long:"interface" value-name:"IP" description:"outgoing multicast interface address"`
	Scenario  string        `long:"scenario" default:"demo" choice:"demo" choice:"all" description:"event set to send"`
	Repeat    int           `long:"repeat" short:"n" default:"1" description:"number of scenario runs"`
	Interval  time.Duration `long:"interval" default:"0s" description:"pause between runs"`
}

func (c *cmdMoldSend) Execute(args []string) (err error) {
	defer errs.PassE(&err)
	g := feed.NewGenerator()
	fc := &config.Feed{Channels: c.Channels}
	if c.Config != "" {
		f, err := config.Load(c.Config)
		errs.CheckE(err)
		if f.Feed != nil {
			fc = f.Feed
			if f.Feed.TTL > 0 {
				c.TTL = f.Feed.TTL
			}
			if f.Feed.Interface != "" {
				c.Interface = f.Feed.Interface
			}
			if f.Feed.Session != "" {
				g.Session = f.Feed.Session
			}
			if f.Feed.FirstSeq != 0 {
				g.Seq = f.Feed.FirstSeq
			}
			if f.Feed.Interval != "" {
				c.Interval, err = f.Feed.IntervalDuration()
				errs.CheckE(err)
			}
		}
	}
	if len(fc.Channels) == 0 {
		fc.Channels = []string{"asx-demo"}
	}
	addrs, err := fc.Addrs()
	errs.CheckE(err)

	var senders []*feed.Sender
	defer func() {
		for _, s := range senders {
			s.Close()
		}
	}()
	for _, a := range addrs {
		s, err := feed.Dial(a, c.TTL, c.Interface)
		errs.CheckE(err)
		senders = append(senders, s)
	}

	for run := 0; run < c.Repeat; run++ {
		if run > 0 && c.Interval > 0 {
			time.Sleep(c.Interval)
		}
		pkts, err := scenario(g, c.Scenario)
		errs.CheckE(err)
		for _, s := range senders {
			errs.CheckE(s.Send(pkts...))
		}
		log.Printf("run %d: sent %d packets, next sequence %d", run+1, len(pkts), g.Seq)
	}
	return
}

func scenario(g *feed.Generator, name string) (pkts [][]byte, err error) {
	defer errs.PassE(&err)
	if name == "demo" {
		return g.Demo()
	}
	if name != "all" {
		return nil, errors.Errorf("unknown scenario %q", name)
	}
	add, id, err := g.Add()
	errs.CheckE(err)
	pkts = append(pkts, add...)
	for _, ev := range []func() ([][]byte, error){
		func() ([][]byte, error) { return g.Replace(id, 999, 888) },
		func() ([][]byte, error) { return g.Execute(id) },
		func() ([][]byte, error) { return g.Trade(545, 454) },
		func() ([][]byte, error) { return g.AuctionUpdate(feed.DefaultAuction) },
		func() ([][]byte, error) { return g.Delete(id) },
	} {
		p, err := ev()
		errs.CheckE(err)
		pkts = append(pkts, p...)
	}
	return
}

func init() {
	Register("moldsend", "send demo ASX ITCH over MoldUDP64", "", &cmdMoldSend{})
}
