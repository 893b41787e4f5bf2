// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package client

import (
	"fmt"

	"github.com/ForrestLi/ITCH-OUCH-tool/ouch"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

// OrderDefaults fill the order fields a caller leaves unset.
type OrderDefaults struct {
	Quantity                  uint64
	Price                     float64
	OrderBookID               uint32
	Side                      byte
	TimeInForce               uint8
	CrossingKey               uint32
	ClientAccount             string
	CustomerInfo              string
	ExchangeInfo              string
	ClearingParticipant       string
	CapacityOfParticipant     string
	DirectedWholesale         string
	IntermediaryID            string
	OrderOrigin               string
	OrderType                 byte
	ShortSellQuantity         uint64
	MinimumAcceptableQuantity uint64
}

func DefaultOrderDefaults() OrderDefaults {
	return OrderDefaults{
		Quantity:              1,
		Price:                 1.0,
		OrderBookID:           12345,
		Side:                  ouch.SideBuy,
		TimeInForce:           ouch.TIFDay,
		CrossingKey:           1,
		CapacityOfParticipant: "A",
		DirectedWholesale:     "N",
		OrderType:             ouch.OrderTypeLimit,
		ShortSellQuantity:     1,
	}
}

// Order is an EnterOrder request. Zero values and nil pointers take the
// session defaults; an empty Token is generated. Price and Quantity are
// pointers so that an explicit zero is sent as given.
type Order struct {
	Token                     string
	OrderBookID               uint32
	Side                      byte
	Quantity                  *uint64
	Price                     *float64
	TimeInForce               *uint8
	OpenClose                 uint8
	ClientAccount             string
	CustomerInfo              string
	ExchangeInfo              string
	ClearingParticipant       string
	CrossingKey               *uint32
	CapacityOfParticipant     string
	DirectedWholesale         string
	ExecutionVenue            string
	IntermediaryID            string
	OrderOrigin               string
	OrderType                 byte
	ShortSellQuantity         *uint64
	MinimumAcceptableQuantity *uint64
}

// Replace is a ReplaceOrder request for ExistingToken.
type Replace struct {
	ExistingToken             string
	ReplacementToken          string
	Quantity                  *uint64
	Price                     *float64
	OpenClose                 uint8
	ClientAccount             string
	CustomerInfo              string
	ExchangeInfo              string
	CapacityOfParticipant     string
	DirectedWholesale         string
	ExecutionVenue            string
	IntermediaryID            string
	OrderOrigin               string
	ShortSellQuantity         *uint64
	MinimumAcceptableQuantity *uint64
}

func Ptr[T any](v T) *T {
	return &v
}

func or[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func orPtr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// NextToken returns an order token built from the prefix and a counter
// zero padded to the token width.
func (s *Session) NextToken() string {
	n := s.nextToken.Add(1) - 1
	width := ouch.TokenWidth - len(s.cfg.TokenPrefix)
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%0*d", s.cfg.TokenPrefix, width, n)
}

// EnterOrder resolves o against the session defaults.
func (s *Session) EnterOrder(o Order) *ouch.EnterOrder {
	def := s.cfg.Defaults
	m := &ouch.EnterOrder{
		OrderToken:            o.Token,
		OrderBookID:           or(o.OrderBookID, def.OrderBookID),
		Side:                  or(o.Side, def.Side),
		Quantity:              orPtr(o.Quantity, def.Quantity),
		Price:                 orPtr(o.Price, def.Price),
		TimeInForce:           orPtr(o.TimeInForce, def.TimeInForce),
		OpenClose:             o.OpenClose,
		ClientAccount:         or(o.ClientAccount, def.ClientAccount),
		CustomerInfo:          or(o.CustomerInfo, def.CustomerInfo),
		ExchangeInfo:          or(o.ExchangeInfo, def.ExchangeInfo),
		ClearingParticipant:   or(o.ClearingParticipant, def.ClearingParticipant),
		CrossingKey:           orPtr(o.CrossingKey, def.CrossingKey),
		CapacityOfParticipant: or(o.CapacityOfParticipant, def.CapacityOfParticipant),
		DirectedWholesale:     or(o.DirectedWholesale, def.DirectedWholesale),
		ExecutionVenue:        o.ExecutionVenue,
		IntermediaryID:        or(o.IntermediaryID, def.IntermediaryID),
		OrderOrigin:           or(o.OrderOrigin, def.OrderOrigin),
		OrderType:             or(o.OrderType, def.OrderType),
	}
	if m.OrderToken == "" {
		m.OrderToken = s.NextToken()
	}
	switch {
	case o.ShortSellQuantity != nil:
		m.ShortSellQuantity = *o.ShortSellQuantity
	case m.Side == ouch.SideBuy || m.Side == ouch.SideSell:
		m.ShortSellQuantity = 0
	default:
		m.ShortSellQuantity = def.ShortSellQuantity
	}
	switch {
	case o.MinimumAcceptableQuantity != nil:
		m.MinimumAcceptableQuantity = *o.MinimumAcceptableQuantity
	case m.TimeInForce == ouch.TIFFillOrKill && ouch.SingleFillMAQ(m.OrderType):
		m.MinimumAcceptableQuantity = m.Quantity
	default:
		m.MinimumAcceptableQuantity = def.MinimumAcceptableQuantity
	}
	return m
}

// ReplaceOrder resolves r against the session defaults.
func (s *Session) ReplaceOrder(r Replace) *ouch.ReplaceOrder {
	def := s.cfg.Defaults
	m := &ouch.ReplaceOrder{
		ExistingOrderToken:        r.ExistingToken,
		ReplacementOrderToken:     r.ReplacementToken,
		Quantity:                  orPtr(r.Quantity, def.Quantity),
		Price:                     orPtr(r.Price, def.Price),
		OpenClose:                 r.OpenClose,
		ClientAccount:             or(r.ClientAccount, def.ClientAccount),
		CustomerInfo:              or(r.CustomerInfo, def.CustomerInfo),
		ExchangeInfo:              or(r.ExchangeInfo, def.ExchangeInfo),
		CapacityOfParticipant:     or(r.CapacityOfParticipant, def.CapacityOfParticipant),
		DirectedWholesale:         or(r.DirectedWholesale, def.DirectedWholesale),
		ExecutionVenue:            r.ExecutionVenue,
		IntermediaryID:            or(r.IntermediaryID, def.IntermediaryID),
		OrderOrigin:               or(r.OrderOrigin, def.OrderOrigin),
		ShortSellQuantity:         orPtr(r.ShortSellQuantity, def.ShortSellQuantity),
		MinimumAcceptableQuantity: orPtr(r.MinimumAcceptableQuantity, def.MinimumAcceptableQuantity),
	}
	if m.ReplacementOrderToken == "" {
		m.ReplacementOrderToken = s.NextToken()
	}
	return m
}

// SendRequest queues an OUCH request as unsequenced data.
func (s *Session) SendRequest(r ouch.Request) error {
	b, err := ouch.Encode(r)
	if err != nil {
		return err
	}
	m := &sbtcp.MessageUnsequencedData{}
	m.SetPayload(b)
	return s.Send(m)
}

// SendLoginRequest asks for the messages after the last one received.
func (s *Session) SendLoginRequest() error {
	return s.Send(&sbtcp.MessageLoginRequest{
		Username:       s.cfg.Username,
		Password:       s.cfg.Password,
		Session:        s.cfg.Session,
		SequenceNumber: s.InboundSequence() + 1,
	})
}

func (s *Session) SendLogoutRequest() error {
	return s.Send(&sbtcp.MessageLogout{})
}

// SendEnterOrder sends o and returns its order token.
func (s *Session) SendEnterOrder(o Order) (string, error) {
	m := s.EnterOrder(o)
	if err := s.SendRequest(m); err != nil {
		return "", err
	}
	return m.OrderToken, nil
}

// SendReplaceOrder sends r and returns the replacement order token.
func (s *Session) SendReplaceOrder(r Replace) (string, error) {
	m := s.ReplaceOrder(r)
	if err := s.SendRequest(m); err != nil {
		return "", err
	}
	return m.ReplacementOrderToken, nil
}

func (s *Session) SendCancelOrder(token string) error {
	return s.SendRequest(&ouch.CancelOrder{OrderToken: token})
}

// SendCancelByOrderID cancels an order by its exchange id. Zero book and
// side take the defaults.
func (s *Session) SendCancelByOrderID(orderID uint64, orderBookID uint32, side byte) error {
	return s.SendRequest(&ouch.CancelByOrderID{
		OrderID:     orderID,
		OrderBookID: or(orderBookID, s.cfg.Defaults.OrderBookID),
		Side:        or(side, s.cfg.Defaults.Side),
	})
}
