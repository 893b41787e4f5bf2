// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package ouch

import (
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
)

// Request is a typed OUCH request.
type Request interface {
	Type() MessageType
	Record() field.Record
}

// Encode serializes a typed request including its message type byte.
func Encode(r Request) ([]byte, error) {
	return EncodeRequest(r.Record())
}

type EnterOrder struct {
	OrderToken                string
	OrderBookID               uint32
	Side                      byte
	Quantity                  uint64
	Price                     float64
	TimeInForce               uint8
	OpenClose                 uint8
	ClientAccount             string
	CustomerInfo              string
	ExchangeInfo              string
	ClearingParticipant       string
	CrossingKey               uint32
	CapacityOfParticipant     string
	DirectedWholesale         string
	ExecutionVenue            string
	IntermediaryID            string
	OrderOrigin               string
	Filler                    string
	OrderType                 byte
	ShortSellQuantity         uint64
	MinimumAcceptableQuantity uint64
}

func (m *EnterOrder) Type() MessageType { return TypeEnterOrder }

func (m *EnterOrder) Record() field.Record {
	return field.Record{
		{Name: field.MessageType, Value: byte(TypeEnterOrder)},
		{Name: FieldOrderToken, Value: m.OrderToken},
		{Name: FieldOrderBookID, Value: m.OrderBookID},
		{Name: FieldSide, Value: m.Side},
		{Name: FieldQuantity, Value: m.Quantity},
		{Name: FieldPrice, Value: m.Price},
		{Name: FieldTimeInForce, Value: m.TimeInForce},
		{Name: FieldOpenClose, Value: m.OpenClose},
		{Name: FieldClientAccount, Value: m.ClientAccount},
		{Name: FieldCustomerInfo, Value: m.CustomerInfo},
		{Name: FieldExchangeInfo, Value: m.ExchangeInfo},
		{Name: FieldClearingParticipant, Value: m.ClearingParticipant},
		{Name: FieldCrossingKey, Value: m.CrossingKey},
		{Name: FieldCapacityOfParticipant, Value: m.CapacityOfParticipant},
		{Name: FieldDirectedWholesale, Value: m.DirectedWholesale},
		{Name: FieldExecutionVenue, Value: m.ExecutionVenue},
		{Name: FieldIntermediaryID, Value: m.IntermediaryID},
		{Name: FieldOrderOrigin, Value: m.OrderOrigin},
		{Name: FieldFiller, Value: m.Filler},
		{Name: FieldOrderType, Value: m.OrderType},
		{Name: FieldShortSellQuantity, Value: m.ShortSellQuantity},
		{Name: FieldMinimumAcceptableQuantity, Value: m.MinimumAcceptableQuantity},
	}
}

type ReplaceOrder struct {
	ExistingOrderToken        string
	ReplacementOrderToken     string
	Quantity                  uint64
	Price                     float64
	OpenClose                 uint8
	ClientAccount             string
	CustomerInfo              string
	ExchangeInfo              string
	CapacityOfParticipant     string
	DirectedWholesale         string
	ExecutionVenue            string
	IntermediaryID            string
	OrderOrigin               string
	Filler                    string
	ShortSellQuantity         uint64
	MinimumAcceptableQuantity uint64
}

func (m *ReplaceOrder) Type() MessageType { return TypeReplaceOrder }

func (m *ReplaceOrder) Record() field.Record {
	return field.Record{
		{Name: field.MessageType, Value: byte(TypeReplaceOrder)},
		{Name: FieldExistingOrderToken, Value: m.ExistingOrderToken},
		{Name: FieldReplacementOrderToken, Value: m.ReplacementOrderToken},
		{Name: FieldQuantity, Value: m.Quantity},
		{Name: FieldPrice, Value: m.Price},
		{Name: FieldOpenClose, Value: m.OpenClose},
		{Name: FieldClientAccount, Value: m.ClientAccount},
		{Name: FieldCustomerInfo, Value: m.CustomerInfo},
		{Name: FieldExchangeInfo, Value: m.ExchangeInfo},
		{Name: FieldCapacityOfParticipant, Value: m.CapacityOfParticipant},
		{Name: FieldDirectedWholesale, Value: m.DirectedWholesale},
		{Name: FieldExecutionVenue, Value: m.ExecutionVenue},
		{Name: FieldIntermediaryID, Value: m.IntermediaryID},
		{Name: FieldOrderOrigin, Value: m.OrderOrigin},
		{Name: FieldFiller, Value: m.Filler},
		{Name: FieldShortSellQuantity, Value: m.ShortSellQuantity},
		{Name: FieldMinimumAcceptableQuantity, Value: m.MinimumAcceptableQuantity},
	}
}

type CancelOrder struct {
	OrderToken string
}

func (m *CancelOrder) Type() MessageType { return TypeCancelOrder }

func (m *CancelOrder) Record() field.Record {
	return field.Record{
		{Name: field.MessageType, Value: byte(TypeCancelOrder)},
		{Name: FieldOrderToken, Value: m.OrderToken},
	}
}

type CancelByOrderID struct {
	OrderBookID uint32
	Side        byte
	OrderID     uint64
}

func (m *CancelByOrderID) Type() MessageType { return TypeCancelByOrderID }

func (m *CancelByOrderID) Record() field.Record {
	return field.Record{
		{Name: field.MessageType, Value: byte(TypeCancelByOrderID)},
		{Name: FieldOrderBookID, Value: m.OrderBookID},
		{Name: FieldSide, Value: m.Side},
		{Name: FieldOrderID, Value: m.OrderID},
	}
}

var (
	_ Request = &EnterOrder{}
	_ Request = &ReplaceOrder{}
	_ Request = &CancelOrder{}
	_ Request = &CancelByOrderID{}
)
