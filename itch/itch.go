// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package itch is the ASX ITCH market data message codec.
//
// Prices are kept as raw signed integers; their scale comes from the
// "Number of decimals in Price" field of the order book directory.
package itch

import (
	"fmt"

	"github.com/ForrestLi/ITCH-OUCH-tool/field"
)

type MessageType byte

const (
	TypeSeconds                       MessageType = 'T'
	TypeOrderBookDirectory            MessageType = 'R'
	TypeAddOrderNoPID                 MessageType = 'A'
	TypeAddOrderWithPID               MessageType = 'F'
	TypeOrderReplace                  MessageType = 'U'
	TypeOrderDelete                   MessageType = 'D'
	TypeOrderExecuted                 MessageType = 'E'
	TypeOrderExecutedWithPrice        MessageType = 'C'
	TypeTrade                         MessageType = 'P'
	TypeAuctionEquilibriumPriceUpdate MessageType = 'Z'
	TypeOrderBookState                MessageType = 'O'
	TypeTickSizeTableEntry            MessageType = 'L'
	TypeEndOfSnapshot                 MessageType = 'G'
)

func (t MessageType) String() string {
	if s, ok := Messages.Lookup(byte(t)); ok {
		return s.Name
	}
	return fmt.Sprintf("MessageType(%q)", byte(t))
}

// Field names shared by several layouts.
const (
	FieldTimestamp     = "Timestamp Nanoseconds"
	FieldSecond        = "Second"
	FieldOrderID       = "Order ID"
	FieldOrderBookID   = "Order Book ID"
	FieldSide          = "Side"
	FieldQuantity      = "Quantity"
	FieldPrice         = "Price"
	FieldMatchID       = "Match ID"
	FieldOwner         = "Participant ID, owner"
	FieldCounterparty  = "Participant ID, counterparty"
	FieldTradePrice    = "Trade Price"
	FieldExecutedQty   = "Executed Quantity"
	FieldBookPosition  = "Order Book Position"
	FieldExchOrderType = "Exchange Order Type"
)

func timestamp() field.Field { return field.U32(FieldTimestamp) }
func matchID() field.Field {
	return field.B(FieldMatchID, 12).WithTransform(field.BigEndianUint96)
}
func participant(name string) field.Field { return field.T(name, 7) }

var (
	Seconds = field.NewSpec(byte(TypeSeconds), "Seconds",
		field.U32(FieldSecond),
	)
	OrderBookDirectory = field.NewSpec(byte(TypeOrderBookDirectory), "OrderBookDirectory",
		timestamp(),
		field.U32(FieldOrderBookID),
		field.T("Symbol", 32),
		field.T("Long Name", 32),
		field.T("ISIN", 12),
		field.U8("Financial Product"),
		field.T("Trading Currency", 3),
		field.U16("Number of decimals in Price"),
		field.U16("Number of decimals in Nominal Value"),
		field.U32("Odd Lot Size"),
		field.U32("Round Lot Size"),
		field.U32("Block Lot Size"),
		field.U64("Nominal Value"),
	)
	AddOrderNoPID = field.NewSpec(byte(TypeAddOrderNoPID), "AddOrderNoPID",
		addOrderFields()...,
	)
	AddOrderWithPID = field.NewSpec(byte(TypeAddOrderWithPID), "AddOrderWithPID",
		append(addOrderFields(), participant("Participant ID"))...,
	)
	OrderReplace = field.NewSpec(byte(TypeOrderReplace), "OrderReplace",
		timestamp(),
		field.U64(FieldOrderID),
		field.U32(FieldOrderBookID),
		field.C(FieldSide),
		field.U32(FieldBookPosition),
		field.U64(FieldQuantity),
		field.I32(FieldPrice),
		field.U16(FieldExchOrderType),
	)
	OrderDelete = field.NewSpec(byte(TypeOrderDelete), "OrderDelete",
		timestamp(),
		field.U64(FieldOrderID),
		field.U32(FieldOrderBookID),
		field.C(FieldSide),
	)
	OrderExecuted = field.NewSpec(byte(TypeOrderExecuted), "OrderExecuted",
		executedFields()...,
	)
	OrderExecutedWithPrice = field.NewSpec(byte(TypeOrderExecutedWithPrice), "OrderExecutedWithPrice",
		append(executedFields(),
			field.I32(FieldTradePrice),
			field.C("Occurred at Cross"),
			field.C("Printable"),
		)...,
	)
	// Trade carries a signed timestamp, unlike every other layout.
	Trade = field.NewSpec(byte(TypeTrade), "Trade",
		field.I32(FieldTimestamp),
		matchID(),
		field.C(FieldSide),
		field.U64(FieldQuantity),
		field.U32(FieldOrderBookID),
		field.I32(FieldTradePrice),
		participant(FieldOwner),
		participant(FieldCounterparty),
		field.C("Printable"),
		field.C("Occurred at Cross"),
	)
	AuctionEquilibriumPriceUpdate = field.NewSpec(byte(TypeAuctionEquilibriumPriceUpdate), "AuctionEquilibriumPriceUpdate",
		timestamp(),
		field.U32(FieldOrderBookID),
		field.U64("Bid Quantity"),
		field.U64("Ask Quantity"),
		field.I32("Equilibrium Price"),
		field.I32("Best Bid Price"),
		field.I32("Best Ask Price"),
		field.U64("Best Bid Quantity"),
		field.U64("Best Ask Quantity"),
	)
	OrderBookState = field.NewSpec(byte(TypeOrderBookState), "OrderBookState",
		timestamp(),
		field.U32(FieldOrderBookID),
		field.T("State Name", 20),
	)
	TickSizeTableEntry = field.NewSpec(byte(TypeTickSizeTableEntry), "TickSizeTableEntry",
		timestamp(),
		field.U32(FieldOrderBookID),
		field.U64("Tick Size"),
		field.I32("Price From"),
		field.I32("Price To"),
	)
	EndOfSnapshot = field.NewSpec(byte(TypeEndOfSnapshot), "EndOfSnapshot",
		field.A("Sequence Number", 20),
	)
)

func addOrderFields() []field.Field {
	return []field.Field{
		timestamp(),
		field.U64(FieldOrderID),
		field.U32(FieldOrderBookID),
		field.C(FieldSide),
		field.U32(FieldBookPosition),
		field.U64(FieldQuantity),
		field.I32(FieldPrice),
		field.U16(FieldExchOrderType),
		field.U8("Lot Type"),
	}
}

func executedFields() []field.Field {
	return []field.Field{
		timestamp(),
		field.U64(FieldOrderID),
		field.U32(FieldOrderBookID),
		field.C(FieldSide),
		field.U64(FieldExecutedQty),
		matchID(),
		participant(FieldOwner),
		participant(FieldCounterparty),
	}
}

// Messages is the static tag -> layout table of all ITCH data messages.
var Messages = field.NewTable("itch",
	Seconds,
	OrderBookDirectory,
	AddOrderNoPID,
	AddOrderWithPID,
	OrderReplace,
	OrderDelete,
	OrderExecuted,
	OrderExecutedWithPrice,
	Trade,
	AuctionEquilibriumPriceUpdate,
	OrderBookState,
	TickSizeTableEntry,
	EndOfSnapshot,
)

// Decode reads the message whose tag is buf[offset]. Unknown tags yield a
// *field.UnknownMessageError; callers that walk a stream report it and move
// on to the next boundary.
func Decode(buf []byte, offset int) (field.Record, error) {
	return Messages.Decode(buf, offset)
}

func Encode(r field.Record) ([]byte, error) {
	return Messages.Encode(r)
}
