// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package feed generates demo ASX ITCH market data over MoldUDP64.
package feed

import (
	"time"

	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/itch"
	"github.com/ForrestLi/ITCH-OUCH-tool/moldudp64"
)

const (
	DefaultSession  = "0123456789"
	DefaultFirstSeq = 74978
	DefaultGroup    = "239.1.1.1:19900"
	DefaultTTL      = 20
)

// Generator emits each event as two packets: a Seconds message followed by
// the event itself, on consecutive sequence numbers.
type Generator struct {
	Session      string
	Seq          uint64
	OrderBookID  uint32
	Side         byte
	BookPosition uint32
	Quantity     uint64
	Price        int32
	OrderType    uint16
	LotType      uint8
	MatchID      string
	Owner        string
	Counterparty string

	nextOrderID uint64
	Now         func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		Session:      DefaultSession,
		Seq:          DefaultFirstSeq,
		OrderBookID:  126690,
		Side:         'B',
		BookPosition: 1,
		Quantity:     2222,
		Price:        3333,
		OrderType:    4,
		MatchID:      "987654321012",
		Owner:        "AAAAAAA",
		Counterparty: "BBBBBBB",
		nextOrderID:  77,
		Now:          time.Now,
	}
}

func (g *Generator) event(typ itch.MessageType, entries ...field.Entry) (pkts [][]byte, err error) {
	defer errs.PassE(&err)
	now := g.Now()
	sec, err := moldudp64.EncodeRecords(g.header(), field.Record{
		{Name: field.MessageType, Value: byte(itch.TypeSeconds)},
		{Name: itch.FieldSecond, Value: uint64(now.Unix())},
	})
	errs.CheckE(err)
	r := field.Record{
		{Name: field.MessageType, Value: byte(typ)},
		{Name: itch.FieldTimestamp, Value: uint64(now.Nanosecond())},
	}
	if typ == itch.TypeTrade {
		r[1].Value = int64(now.Nanosecond())
	}
	ev, err := moldudp64.EncodeRecords(moldudp64.Header{Session: g.Session, SequenceNumber: g.Seq + 1}, append(r, entries...))
	errs.CheckE(err)
	g.Seq += 2
	return [][]byte{sec, ev}, nil
}

func (g *Generator) header() moldudp64.Header {
	return moldudp64.Header{Session: g.Session, SequenceNumber: g.Seq}
}

// Add adds a new order and returns its id. Order ids increase by one.
func (g *Generator) Add() ([][]byte, uint64, error) {
	id := g.nextOrderID
	pkts, err := g.event(itch.TypeAddOrderNoPID,
		field.Entry{Name: itch.FieldOrderID, Value: id},
		field.Entry{Name: itch.FieldOrderBookID, Value: g.OrderBookID},
		field.Entry{Name: itch.FieldSide, Value: g.Side},
		field.Entry{Name: itch.FieldBookPosition, Value: g.BookPosition},
		field.Entry{Name: itch.FieldQuantity, Value: g.Quantity},
		field.Entry{Name: itch.FieldPrice, Value: g.Price},
		field.Entry{Name: itch.FieldExchOrderType, Value: g.OrderType},
		field.Entry{Name: "Lot Type", Value: g.LotType},
	)
	if err != nil {
		return nil, 0, err
	}
	g.nextOrderID++
	return pkts, id, nil
}

func (g *Generator) Delete(orderID uint64) ([][]byte, error) {
	return g.event(itch.TypeOrderDelete,
		field.Entry{Name: itch.FieldOrderID, Value: orderID},
		field.Entry{Name: itch.FieldOrderBookID, Value: g.OrderBookID},
		field.Entry{Name: itch.FieldSide, Value: g.Side},
	)
}

func (g *Generator) Replace(orderID uint64, price int32, qty uint64) ([][]byte, error) {
	return g.event(itch.TypeOrderReplace,
		field.Entry{Name: itch.FieldOrderID, Value: orderID},
		field.Entry{Name: itch.FieldOrderBookID, Value: g.OrderBookID},
		field.Entry{Name: itch.FieldSide, Value: g.Side},
		field.Entry{Name: itch.FieldBookPosition, Value: uint32(7)},
		field.Entry{Name: itch.FieldQuantity, Value: qty},
		field.Entry{Name: itch.FieldPrice, Value: price},
		field.Entry{Name: itch.FieldExchOrderType, Value: g.OrderType},
	)
}

// Execute fills orderID in full.
func (g *Generator) Execute(orderID uint64) ([][]byte, error) {
	return g.event(itch.TypeOrderExecuted,
		field.Entry{Name: itch.FieldOrderID, Value: orderID},
		field.Entry{Name: itch.FieldOrderBookID, Value: g.OrderBookID},
		field.Entry{Name: itch.FieldSide, Value: g.Side},
		field.Entry{Name: itch.FieldExecutedQty, Value: g.Quantity},
		field.Entry{Name: itch.FieldMatchID, Value: g.MatchID},
		field.Entry{Name: itch.FieldOwner, Value: g.Owner},
		field.Entry{Name: itch.FieldCounterparty, Value: g.Counterparty},
	)
}

func (g *Generator) Trade(price int32, qty uint64) ([][]byte, error) {
	return g.event(itch.TypeTrade,
		field.Entry{Name: itch.FieldMatchID, Value: g.MatchID},
		field.Entry{Name: itch.FieldSide, Value: g.Side},
		field.Entry{Name: itch.FieldQuantity, Value: qty},
		field.Entry{Name: itch.FieldOrderBookID, Value: g.OrderBookID},
		field.Entry{Name: itch.FieldTradePrice, Value: price},
		field.Entry{Name: itch.FieldOwner, Value: g.Owner},
		field.Entry{Name: itch.FieldCounterparty, Value: g.Counterparty},
		field.Entry{Name: "Printable", Value: byte('Y')},
		field.Entry{Name: "Occurred at Cross", Value: byte('N')},
	)
}

type Auction struct {
	BidQty, AskQty         uint64
	Equilibrium            int32
	BestBid, BestAsk       int32
	BestBidQty, BestAskQty uint64
}

var DefaultAuction = Auction{
	BidQty:      876,
	AskQty:      877,
	Equilibrium: 222,
	BestBid:     987,
	BestAsk:     998,
	BestBidQty:  876,
	BestAskQty:  997,
}

func (g *Generator) AuctionUpdate(a Auction) ([][]byte, error) {
	return g.event(itch.TypeAuctionEquilibriumPriceUpdate,
		field.Entry{Name: itch.FieldOrderBookID, Value: g.OrderBookID},
		field.Entry{Name: "Bid Quantity", Value: a.BidQty},
		field.Entry{Name: "Ask Quantity", Value: a.AskQty},
		field.Entry{Name: "Equilibrium Price", Value: a.Equilibrium},
		field.Entry{Name: "Best Bid Price", Value: a.BestBid},
		field.Entry{Name: "Best Ask Price", Value: a.BestAsk},
		field.Entry{Name: "Best Bid Quantity", Value: a.BestBidQty},
		field.Entry{Name: "Best Ask Quantity", Value: a.BestAskQty},
	)
}

// Demo is the default scenario: add an order, then delete it.
func (g *Generator) Demo() (pkts [][]byte, err error) {
	defer errs.PassE(&err)
	add, id, err := g.Add()
	errs.CheckE(err)
	del, err := g.Delete(id)
	errs.CheckE(err)
	return append(add, del...), nil
}
