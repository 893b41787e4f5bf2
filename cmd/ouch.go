// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/client"
	"github.com/ForrestLi/ITCH-OUCH-tool/config"
	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/log"
	"github.com/ForrestLi/ITCH-OUCH-tool/ouch"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

type cmdOuch struct {
	Config   string        `long:"config" short:"c" required:"y" value-name:"YAML" description:"session configuration"`
	Enter    bool          `long:"enter" description:"enter one order after login"`
	Price    string        `long:"price" value-name:"DECIMAL" description:"order price, at most 2 decimals"`
	Quantity uint64        `long:"quantity" description:"order quantity"`
	Side     string        `long:"side" choice:"B" choice:"S" choice:"T" choice:"C" description:"order side"`
	Cancel   bool          `long:"cancel" description:"cancel the entered order"`
	Idle     time.Duration `long:"idle" default:"5s" description:"stop after no message for this long"`
}

func (c *cmdOuch) Execute(args []string) (err error) {
	defer errs.PassE(&err)
	f, err := config.Load(c.Config)
	errs.CheckE(err)
	errs.CheckE(checkNotNil(f.Session, "session section missing in "+c.Config))
	cfg, err := f.Session.ClientConfig()
	errs.CheckE(err)
	order, err := c.order()
	errs.CheckE(err)

	s := client.NewSession(cfg)
	errs.CheckE(s.Start(context.Background()))
	defer func() {
		if serr := s.Stop(); err == nil {
			err = serr
		}
	}()
	errs.CheckE(s.SendLoginRequest())
	errs.CheckE(c.run(s, order, os.Stdout))
	errs.CheckE(s.SendLogoutRequest())
	return
}

func checkNotNil(v *config.Session, msg string) error {
	if v == nil {
		return errors.New(msg)
	}
	return nil
}

func (c *cmdOuch) order() (o client.Order, err error) {
	if c.Price != "" {
		var p float64
		if p, err = ouch.ParsePrice(c.Price); err != nil {
			return
		}
		o.Price = &p
	}
	if c.Quantity != 0 {
		o.Quantity = client.Ptr(c.Quantity)
	}
	if c.Side != "" {
		o.Side = c.Side[0]
	}
	return
}

// run prints every message until the gateway is idle for c.Idle. The
// order, if any, is entered once the login is accepted.
func (c *cmdOuch) run(s *client.Session, o client.Order, w io.Writer) error {
	for {
		m, err := s.Receive(c.Idle)
		if errors.Is(err, client.ErrTimeout) {
			log.Printf("idle for %s, inbound sequence %d", c.Idle, s.InboundSequence())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%c %s\n", m.Type(), describe(m))
		switch m.(type) {
		case *sbtcp.MessageLoginAccepted:
			if !c.Enter {
				continue
			}
			token, err := s.SendEnterOrder(o)
			if err != nil {
				return err
			}
			log.Printf("entered order %s", token)
			if c.Cancel {
				if err := s.SendCancelOrder(token); err != nil {
					return err
				}
			}
		case *sbtcp.MessageLoginRejected, *sbtcp.MessageEnd:
			return nil
		}
	}
}

func describe(m sbtcp.Message) string {
	switch x := m.(type) {
	case *sbtcp.MessageSequencedData:
		if x.Err != nil {
			return x.Err.Error()
		}
		return x.Data.String()
	case *sbtcp.MessageDebug:
		return x.Text()
	}
	return pretty.Sprint(m)
}

func init() {
	Register("ouch", "log in to an OUCH gateway and print its messages", "", &cmdOuch{})
}
