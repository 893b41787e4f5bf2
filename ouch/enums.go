// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package ouch

import "github.com/ForrestLi/ITCH-OUCH-tool/field"

type ev = field.EnumValue

const (
	SideBuy       byte = 'B'
	SideSell      byte = 'S'
	SideSellShort byte = 'T'
	SideCombo     byte = 'C'
)

var Side = field.NewEnum("Side",
	ev{Name: "Buy", Wire: uint64(SideBuy)},
	ev{Name: "Sell", Wire: uint64(SideSell)},
	ev{Name: "SellShort", Wire: uint64(SideSellShort)},
	ev{Name: "Combo", Wire: uint64(SideCombo)},
)

const (
	TIFDay         uint8 = 0
	TIFFillAndKill uint8 = 3
	TIFFillOrKill  uint8 = 4
)

var TimeInForce = field.NewEnum("TimeInForce",
	ev{Name: "Day", Wire: uint64(TIFDay)},
	ev{Name: "Fill and Kill", Wire: uint64(TIFFillAndKill)},
	ev{Name: "Fill or Kill", Wire: uint64(TIFFillOrKill)},
)

const (
	OrderTypeLimit               byte = 'Y'
	OrderTypeCentrePointMid      byte = 'N'
	OrderTypeCentrePointDark     byte = 'D'
	OrderTypeSweep               byte = 'S'
	OrderTypeSweepDualPosted     byte = 'P'
	OrderTypeMidPointBlockMAQ    byte = 'B'
	OrderTypeDarkLimitBlockMAQ   byte = 'F'
	OrderTypeCentrePointSweepMAQ byte = 'T'
	OrderTypeAnyPriceBlock       byte = 'C'
	OrderTypeAnyPriceBlockMAQ    byte = 'E'
)

var OrderType = field.NewEnum("OrderType",
	ev{Name: "Limit order", Wire: uint64(OrderTypeLimit)},
	ev{Name: "Centre Point Order (mid-point only)", Wire: uint64(OrderTypeCentrePointMid)},
	ev{Name: "Center Point Order (dark limit)", Wire: uint64(OrderTypeCentrePointDark)},
	ev{Name: "Sweep order", Wire: uint64(OrderTypeSweep)},
	ev{Name: "Sweep order (dual posted)", Wire: uint64(OrderTypeSweepDualPosted)},
	ev{Name: "Mid-point Centre Point Block Order with single fill MAQ", Wire: uint64(OrderTypeMidPointBlockMAQ)},
	ev{Name: "Dark limit Centre Point Block Order with single fill MAQ", Wire: uint64(OrderTypeDarkLimitBlockMAQ)},
	ev{Name: "Centre Point Sweep order with single fill MAQ", Wire: uint64(OrderTypeCentrePointSweepMAQ)},
	ev{Name: "Any Price Block order", Wire: uint64(OrderTypeAnyPriceBlock)},
	ev{Name: "Any Price Block order with single fill MAQ", Wire: uint64(OrderTypeAnyPriceBlockMAQ)},
)

// SingleFillMAQ reports whether an order type carries a single fill
// minimum acceptable quantity.
func SingleFillMAQ(t byte) bool {
	switch t {
	case OrderTypeMidPointBlockMAQ, OrderTypeDarkLimitBlockMAQ, OrderTypeCentrePointSweepMAQ, OrderTypeAnyPriceBlockMAQ:
		return true
	}
	return false
}

var OrderState = field.NewEnum("OrderState",
	ev{Name: "On book", Wire: 1},
	ev{Name: "Not on book", Wire: 2},
	ev{Name: "OUCH ownership lost", Wire: 99},
)

var CancelReason = field.NewEnum("CancelReason",
	ev{Name: "Cancelled by user", Wire: 1},
	ev{Name: "Order inactivated due to connection loss", Wire: 4},
	ev{Name: "Fill and Kill order that was deleted in an auction", Wire: 9},
	ev{Name: "Order deleted by ASX on behalf of the participant", Wire: 10},
	ev{Name: "Deleted by system due to instrument session change", Wire: 20},
	ev{Name: "Inactivated by system due to instrument session change", Wire: 21},
	ev{Name: "Inactivated Day order", Wire: 24},
)

var DealSource = field.NewEnum("DealSource",
	ev{Name: "Single series to single series auto-matched during continuous trading", Wire: 1},
	ev{Name: "Single series to single series auto-matched during an auction", Wire: 20},
	ev{Name: "Tailor made combination match", Wire: 36},
	ev{Name: "Combination matched outright legs", Wire: 43},
	ev{Name: "Booked transaction resulting from Unintentional Crossing Prevention", Wire: 44},
	ev{Name: "Booked transaction resulting from Unintentional Crossing Prevention during an auction", Wire: 45},
	ev{Name: "Centre Point Preference Matched trade", Wire: 46},
	ev{Name: "Centre Point trade", Wire: 47},
	ev{Name: "Centre Point booked transaction resulting from Unintentional Crossing Prevention", Wire: 48},
	ev{Name: "Reserved for future use", Wire: 49},
	ev{Name: "Block trade", Wire: 50},
	ev{Name: "Preference Block Trade", Wire: 51},
)

// CodeOf returns the known code named name and panics if e has none; it is
// meant for static tables and tests.
func CodeOf(e *field.Enum, name string) field.Code {
	c, ok := e.Code(name)
	if !ok {
		panic("ouch: no " + e.String() + " named " + name)
	}
	return c
}
