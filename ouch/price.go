// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package ouch

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ForrestLi/ITCH-OUCH-tool/field"
)

// ParsePrice reads a decimal price such as "12.34". More than two
// significant decimals or a value out of the wire range is an error.
func ParsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(field.ErrMalformed, "price %q: %v", s, err)
	}
	if !d.Equal(d.Round(2)) {
		return 0, errors.Wrapf(field.ErrMalformed, "price %q has more than 2 decimals", s)
	}
	p, _ := d.Float64()
	if _, err := field.EncodePrice(p); err != nil {
		return 0, errors.Wrapf(field.ErrMalformed, "price %q out of range", s)
	}
	return p, nil
}

// FormatPrice renders a wire price with exactly two decimals.
func FormatPrice(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2)
}
