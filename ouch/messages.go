// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package ouch is the ASX OUCH order entry message codec. Requests travel
// client to server inside SoupBinTCP unsequenced data, responses come back
// as sequenced data.
package ouch

import (
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
)

type MessageType byte

const (
	TypeEnterOrder      MessageType = 'O'
	TypeReplaceOrder    MessageType = 'U'
	TypeCancelOrder     MessageType = 'X'
	TypeCancelByOrderID MessageType = 'Y'

	TypeOrderAccepted  MessageType = 'A'
	TypeOrderReplaced  MessageType = 'U'
	TypeOrderCancelled MessageType = 'C'
	TypeOrderRejected  MessageType = 'J'
	TypeOrderExecuted  MessageType = 'E'
)

const TokenWidth = 14

const (
	FieldTimestamp                 = "Timestamp"
	FieldOrderToken                = "OrderToken"
	FieldExistingOrderToken        = "ExistingOrderToken"
	FieldReplacementOrderToken     = "ReplacementOrderToken"
	FieldPreviousOrderToken        = "PreviousOrderToken"
	FieldOrderBookID               = "OrderBookID"
	FieldSide                      = "Side"
	FieldOrderID                   = "OrderID"
	FieldQuantity                  = "Quantity"
	FieldPrice                     = "Price"
	FieldTimeInForce               = "TimeInForce"
	FieldOpenClose                 = "OpenClose"
	FieldClientAccount             = "ClientAccount"
	FieldCustomerInfo              = "CustomerInfo"
	FieldExchangeInfo              = "ExchangeInfo"
	FieldClearingParticipant       = "ClearingParticipant"
	FieldCrossingKey               = "CrossingKey"
	FieldCapacityOfParticipant     = "CapacityOfParticipant"
	FieldDirectedWholesale         = "DirectedWholesale"
	FieldExecutionVenue            = "ExecutionVenue"
	FieldIntermediaryID            = "IntermediaryID"
	FieldOrderOrigin               = "OrderOrigin"
	FieldFiller                    = "Filler"
	FieldOrderType                 = "OUCHOrderType"
	FieldShortSellQuantity         = "ShortSellQuantity"
	FieldMinimumAcceptableQuantity = "MinimumAcceptableQuantity"
	FieldOrderState                = "OrderState"
	FieldCancelReason              = "CancelReason"
	FieldRejectCode                = "RejectCode"
	FieldTradedQuantity            = "TradedQuantity"
	FieldTradePrice                = "TradePrice"
	FieldMatchID                   = "MatchID"
	FieldDealSource                = "DealSource"
	FieldMatchAttributes           = "MatchAttributes"
)

func token(name string) field.Field { return field.T(name, TokenWidth) }
func side() field.Field             { return field.C(FieldSide).WithEnum(Side) }
func tif() field.Field              { return field.U8(FieldTimeInForce).WithEnum(TimeInForce) }
func orderType() field.Field        { return field.C(FieldOrderType).WithEnum(OrderType) }

// participantTail is the run of fields from CapacityOfParticipant to Filler
// shared by every order layout.
func participantTail() []field.Field {
	return []field.Field{
		field.T(FieldCapacityOfParticipant, 1),
		field.T(FieldDirectedWholesale, 1),
		field.T(FieldExecutionVenue, 4),
		field.T(FieldIntermediaryID, 10),
		field.T(FieldOrderOrigin, 20),
		field.T(FieldFiller, 8),
	}
}

func join(parts ...[]field.Field) []field.Field {
	var fs []field.Field
	for _, p := range parts {
		fs = append(fs, p...)
	}
	return fs
}

var (
	EnterOrderSpec = field.NewSpec(byte(TypeEnterOrder), "EnterOrder", join(
		[]field.Field{
			token(FieldOrderToken),
			field.U32(FieldOrderBookID),
			side(),
			field.U64(FieldQuantity),
			field.P(FieldPrice),
			tif(),
			field.U8(FieldOpenClose),
			field.T(FieldClientAccount, 10),
			field.T(FieldCustomerInfo, 15),
			field.T(FieldExchangeInfo, 32),
			field.T(FieldClearingParticipant, 1),
			field.U32(FieldCrossingKey),
		},
		participantTail(),
		[]field.Field{
			orderType(),
			field.U64(FieldShortSellQuantity),
			field.U64(FieldMinimumAcceptableQuantity),
		},
	)...)
	// ReplaceOrderSpec pads the account and info fields with NUL bytes.
	ReplaceOrderSpec = field.NewSpec(byte(TypeReplaceOrder), "ReplaceOrder", join(
		[]field.Field{
			token(FieldExistingOrderToken),
			token(FieldReplacementOrderToken),
			field.U64(FieldQuantity),
			field.P(FieldPrice),
			field.U8(FieldOpenClose),
			field.T(FieldClientAccount, 10).WithPad(0),
			field.T(FieldCustomerInfo, 15).WithPad(0),
			field.T(FieldExchangeInfo, 32).WithPad(0),
		},
		participantTail(),
		[]field.Field{
			field.U64(FieldShortSellQuantity),
			field.U64(FieldMinimumAcceptableQuantity),
		},
	)...)
	CancelOrderSpec = field.NewSpec(byte(TypeCancelOrder), "CancelOrder",
		token(FieldOrderToken),
	)
	CancelByOrderIDSpec = field.NewSpec(byte(TypeCancelByOrderID), "CancelByOrderID",
		field.U32(FieldOrderBookID),
		side(),
		field.U64(FieldOrderID),
	)
)

// orderBody is the common part of OrderAccepted and OrderReplaced following
// the tokens.
func orderBody() []field.Field {
	return join(
		[]field.Field{
			field.U32(FieldOrderBookID),
			side(),
			field.U64(FieldOrderID),
			field.U64(FieldQuantity),
			field.P(FieldPrice),
			tif(),
			field.U8(FieldOpenClose),
			field.T(FieldClientAccount, 10),
			field.U8(FieldOrderState).WithEnum(OrderState),
			field.T(FieldCustomerInfo, 15),
			field.T(FieldExchangeInfo, 32),
			field.T(FieldClearingParticipant, 1),
			field.U32(FieldCrossingKey),
		},
		participantTail(),
		[]field.Field{
			orderType(),
			field.U64(FieldShortSellQuantity),
			field.U64(FieldMinimumAcceptableQuantity),
		},
	)
}

var (
	OrderAcceptedSpec = field.NewSpec(byte(TypeOrderAccepted), "OrderAccepted", join(
		[]field.Field{field.U64(FieldTimestamp), token(FieldOrderToken)},
		orderBody(),
	)...)
	OrderReplacedSpec = field.NewSpec(byte(TypeOrderReplaced), "OrderReplaced", join(
		[]field.Field{
			field.U64(FieldTimestamp),
			token(FieldReplacementOrderToken),
			token(FieldPreviousOrderToken),
		},
		orderBody(),
	)...)
	OrderCancelledSpec = field.NewSpec(byte(TypeOrderCancelled), "OrderCancelled",
		field.U64(FieldTimestamp),
		token(FieldOrderToken),
		field.U32(FieldOrderBookID),
		side(),
		field.U64(FieldOrderID),
		field.U8(FieldCancelReason).WithEnum(CancelReason),
	)
	OrderRejectedSpec = field.NewSpec(byte(TypeOrderRejected), "OrderRejected",
		field.U64(FieldTimestamp),
		token(FieldOrderToken),
		field.I32(FieldRejectCode),
	)
	OrderExecutedSpec = field.NewSpec(byte(TypeOrderExecuted), "OrderExecuted",
		field.U64(FieldTimestamp),
		token(FieldOrderToken),
		field.U32(FieldOrderBookID),
		field.U64(FieldTradedQuantity),
		field.P(FieldTradePrice),
		field.B(FieldMatchID, 12).WithTransform(field.BigEndianUint96),
		field.U16(FieldDealSource).WithEnum(DealSource),
		field.U8(FieldMatchAttributes),
	)
)

// Requests and Responses are separate tables since 'U' is both
// ReplaceOrder and OrderReplaced.
var (
	Requests = field.NewTable("ouch requests",
		EnterOrderSpec,
		ReplaceOrderSpec,
		CancelOrderSpec,
		CancelByOrderIDSpec,
	)
	Responses = field.NewTable("ouch responses",
		OrderAcceptedSpec,
		OrderReplacedSpec,
		OrderCancelledSpec,
		OrderRejectedSpec,
		OrderExecutedSpec,
	)
)

func DecodeRequest(buf []byte, offset int) (field.Record, error) {
	return Requests.Decode(buf, offset)
}

func DecodeResponse(buf []byte, offset int) (field.Record, error) {
	return Responses.Decode(buf, offset)
}

func EncodeRequest(r field.Record) ([]byte, error) {
	return Requests.Encode(r)
}

// EncodeResponse is used by gateway simulators and tests.
func EncodeResponse(r field.Record) ([]byte, error) {
	return Responses.Encode(r)
}
