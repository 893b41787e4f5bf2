// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package client

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ForrestLi/ITCH-OUCH-tool/ouch"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		prefix string
		want   []string
	}{
		{"OUCH", []string{"OUCH0000000001", "OUCH0000000002"}},
		{"", []string{"00000000000001", "00000000000002"}},
		{"ABCDEFGHIJKLM", []string{"ABCDEFGHIJKLM1", "ABCDEFGHIJKLM2"}},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.TokenPrefix = tt.prefix
		s := NewSession(cfg)
		var got []string
		for range tt.want {
			got = append(got, s.NextToken())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("prefix %q (-want +got):\n%s", tt.prefix, diff)
		}
	}
}

func TestEnterOrderDefaults(t *testing.T) {
	s := NewSession(DefaultConfig())
	got := s.EnterOrder(Order{})
	want := &ouch.EnterOrder{
		OrderToken:            "OUCH0000000001",
		OrderBookID:           12345,
		Side:                  'B',
		Quantity:              1,
		Price:                 1.0,
		TimeInForce:           0,
		CrossingKey:           1,
		CapacityOfParticipant: "A",
		DirectedWholesale:     "N",
		OrderType:             'Y',
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if _, err := ouch.Encode(got); err != nil {
		t.Errorf("encode defaults: %v", err)
	}
}

func TestOrderRules(t *testing.T) {
	tests := []struct {
		name      string
		in        Order
		shortSell uint64
		maq       uint64
	}{
		{"buy", Order{Side: 'B'}, 0, 0},
		{"sell", Order{Side: 'S'}, 0, 0},
		{"sell short", Order{Side: ouch.SideSellShort}, 1, 0},
		{"explicit short sell", Order{Side: 'S', ShortSellQuantity: Ptr[uint64](5)}, 5, 0},
		{"fok single fill", Order{Quantity: Ptr[uint64](7), TimeInForce: Ptr(ouch.TIFFillOrKill), OrderType: ouch.OrderTypeMidPointBlockMAQ}, 0, 7},
		{"fok other type", Order{Quantity: Ptr[uint64](7), TimeInForce: Ptr(ouch.TIFFillOrKill), OrderType: ouch.OrderTypeAnyPriceBlock}, 0, 0},
		{"day single fill", Order{Quantity: Ptr[uint64](7), OrderType: ouch.OrderTypeMidPointBlockMAQ}, 0, 0},
		{"explicit maq", Order{Quantity: Ptr[uint64](7), TimeInForce: Ptr(ouch.TIFFillOrKill), OrderType: 'B', MinimumAcceptableQuantity: Ptr[uint64](3)}, 0, 3},
	}
	s := NewSession(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := s.EnterOrder(tt.in)
			if m.ShortSellQuantity != tt.shortSell || m.MinimumAcceptableQuantity != tt.maq {
				t.Errorf("short sell %d, MAQ %d; want %d, %d", m.ShortSellQuantity, m.MinimumAcceptableQuantity, tt.shortSell, tt.maq)
			}
		})
	}
}

func TestReplaceDefaults(t *testing.T) {
	s := NewSession(DefaultConfig())
	got := s.ReplaceOrder(Replace{ExistingToken: "OUCH0000000009", Price: Ptr(2.5)})
	want := &ouch.ReplaceOrder{
		ExistingOrderToken:    "OUCH0000000009",
		ReplacementOrderToken: "OUCH0000000001",
		Quantity:              1,
		Price:                 2.5,
		CapacityOfParticipant: "A",
		DirectedWholesale:     "N",
		ShortSellQuantity:     1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("replace mismatch (-want +got):\n%s", diff)
	}
	if r := s.ReplaceOrder(Replace{ExistingToken: "X", ReplacementToken: "Y"}); r.ReplacementOrderToken != "Y" || s.NextToken() != "OUCH0000000002" {
		t.Errorf("supplied token consumed the counter")
	}
}

func TestExplicitZeroPrice(t *testing.T) {
	s := NewSession(DefaultConfig())
	m := s.EnterOrder(Order{Price: Ptr(0.0), OrderType: ouch.OrderTypeAnyPriceBlock})
	if m.Price != 0 {
		t.Errorf("EnterOrder price %v, want 0", m.Price)
	}
	if m.Quantity != 1 {
		t.Errorf("EnterOrder quantity %d, want the default", m.Quantity)
	}
	if _, err := ouch.Encode(m); err != nil {
		t.Errorf("encode zero price: %v", err)
	}
	r := s.ReplaceOrder(Replace{ExistingToken: "OUCH0000000001", Price: Ptr(0.0), Quantity: Ptr[uint64](0)})
	if r.Price != 0 || r.Quantity != 0 {
		t.Errorf("ReplaceOrder price %v quantity %d, want zeros", r.Price, r.Quantity)
	}
}
