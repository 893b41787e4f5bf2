// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package config reads the YAML files of the command line tools.
//
//	session:
//	  remote: 10.0.0.1:21800
//	  username: user
//	  password: secret
//	  heartbeat_timeout: 1s
//	  defaults:
//	    order_book_id: 12345
//	    side: B
//	feed:
//	  channels: [asx-demo]
//	  ttl: 20
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ForrestLi/ITCH-OUCH-tool/client"
	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

type File struct {
	Session *Session `yaml:"session,omitempty"`
	Feed    *Feed    `yaml:"feed,omitempty"`
}

type Session struct {
	Remote           string    `yaml:"remote"`
	Local            string    `yaml:"local,omitempty"`
	Username         string    `yaml:"username"`
	Password         string    `yaml:"password"`
	Session          string    `yaml:"session,omitempty"`
	LastOutboundSeq  uint64    `yaml:"last_outbound_seq,omitempty"`
	LastInboundSeq   uint64    `yaml:"last_inbound_seq,omitempty"`
	HeartbeatTimeout string    `yaml:"heartbeat_timeout,omitempty"`
	HandleHeartbeats *bool     `yaml:"handle_heartbeats,omitempty"`
	TokenPrefix      *string   `yaml:"token_prefix,omitempty"`
	ConnectAttempts  int       `yaml:"connect_attempts,omitempty"`
	ConnectBackoff   string    `yaml:"connect_backoff,omitempty"`
	StopTimeout      string    `yaml:"stop_timeout,omitempty"`
	Dialect          string    `yaml:"dialect,omitempty"`
	Defaults         *Defaults `yaml:"defaults,omitempty"`
}

// Defaults override client.DefaultOrderDefaults field by field.
type Defaults struct {
	Quantity            *uint64  `yaml:"quantity,omitempty"`
	Price               *float64 `yaml:"price,omitempty"`
	OrderBookID         *uint32  `yaml:"order_book_id,omitempty"`
	Side                string   `yaml:"side,omitempty"`
	TimeInForce         *uint8   `yaml:"time_in_force,omitempty"`
	CrossingKey         *uint32  `yaml:"crossing_key,omitempty"`
	ClientAccount       *string  `yaml:"client_account,omitempty"`
	CustomerInfo        *string  `yaml:"customer_info,omitempty"`
	ExchangeInfo        *string  `yaml:"exchange_info,omitempty"`
	ClearingParticipant *string  `yaml:"clearing_participant,omitempty"`
	Capacity            *string  `yaml:"capacity,omitempty"`
	DirectedWholesale   *string  `yaml:"directed_wholesale,omitempty"`
	OrderType           string   `yaml:"order_type,omitempty"`
	ShortSellQuantity   *uint64  `yaml:"short_sell_quantity,omitempty"`
	MAQ                 *uint64  `yaml:"minimum_acceptable_quantity,omitempty"`
}

type Feed struct {
	Channels  []string `yaml:"channels"`
	TTL       int      `yaml:"ttl,omitempty"`
	Interface string   `yaml:"interface,omitempty"`
	Session   string   `yaml:"session,omitempty"`
	FirstSeq  uint64   `yaml:"first_seq,omitempty"`
	Interval  string   `yaml:"interval,omitempty"`
}

func Load(path string) (f *File, err error) {
	defer errs.PassE(&err)
	data, err := os.ReadFile(path)
	errs.CheckE(err)
	f, err = Decode(bytes.NewReader(data))
	errs.CheckE(errors.Wrap(err, path))
	return
}

// Decode parses one YAML document. Unknown keys are errors.
func Decode(rd io.Reader) (*File, error) {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "config")
	}
	return &f, nil
}

func duration(name, s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	errs.CheckE(errors.Wrapf(err, "config: %s", name))
	return d
}

func char(name, s string, def byte) byte {
	switch len(s) {
	case 0:
		return def
	case 1:
		return s[0]
	}
	errs.CheckE(errors.Errorf("config: %s must be a single character, got %q", name, s))
	return 0
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ClientConfig applies the session section on top of client.DefaultConfig.
func (s *Session) ClientConfig() (cfg client.Config, err error) {
	defer errs.PassE(&err)
	cfg = client.DefaultConfig()
	errs.CheckE(errors.Wrap(checkNonEmpty("session.remote", s.Remote), "config"))
	cfg.RemoteAddr = s.Remote
	cfg.LocalAddr = s.Local
	cfg.Username = s.Username
	cfg.Password = s.Password
	cfg.Session = s.Session
	cfg.LastOutboundSeq = s.LastOutboundSeq
	cfg.LastInboundSeq = s.LastInboundSeq
	cfg.HeartbeatTimeout = duration("heartbeat_timeout", s.HeartbeatTimeout, cfg.HeartbeatTimeout)
	cfg.ConnectBackoff = duration("connect_backoff", s.ConnectBackoff, cfg.ConnectBackoff)
	cfg.StopTimeout = duration("stop_timeout", s.StopTimeout, cfg.StopTimeout)
	set(&cfg.HandleHeartbeats, s.HandleHeartbeats)
	set(&cfg.TokenPrefix, s.TokenPrefix)
	if s.ConnectAttempts > 0 {
		cfg.ConnectAttempts = s.ConnectAttempts
	}
	switch s.Dialect {
	case "", "ouch":
		cfg.Dialect = sbtcp.OUCH
	case "glimpse":
		cfg.Dialect = sbtcp.Glimpse
	default:
		errs.CheckE(errors.Errorf("config: unknown dialect %q", s.Dialect))
	}
	if d := s.Defaults; d != nil {
		od := &cfg.Defaults
		set(&od.Quantity, d.Quantity)
		set(&od.Price, d.Price)
		set(&od.OrderBookID, d.OrderBookID)
		od.Side = char("defaults.side", d.Side, od.Side)
		set(&od.TimeInForce, d.TimeInForce)
		set(&od.CrossingKey, d.CrossingKey)
		set(&od.ClientAccount, d.ClientAccount)
		set(&od.CustomerInfo, d.CustomerInfo)
		set(&od.ExchangeInfo, d.ExchangeInfo)
		set(&od.ClearingParticipant, d.ClearingParticipant)
		set(&od.CapacityOfParticipant, d.Capacity)
		set(&od.DirectedWholesale, d.DirectedWholesale)
		od.OrderType = char("defaults.order_type", d.OrderType, od.OrderType)
		set(&od.ShortSellQuantity, d.ShortSellQuantity)
		set(&od.MinimumAcceptableQuantity, d.MAQ)
	}
	return
}

func checkNonEmpty(name, v string) error {
	if v == "" {
		return errors.Errorf("%s is required", name)
	}
	return nil
}

// Addrs resolves the channel list.
func (f *Feed) Addrs() ([]string, error) {
	c := NewChannels()
	for _, ch := range f.Channels {
		if err := c.LoadFromStr(ch); err != nil {
			return nil, err
		}
	}
	return c.Addrs(), nil
}

func (f *Feed) IntervalDuration() (d time.Duration, err error) {
	defer errs.PassE(&err)
	return duration("feed.interval", f.Interval, time.Second), nil
}
