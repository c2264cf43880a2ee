package model

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
)

// Currency is an ISO 4217 currency code. Two currencies are equal when their codes are.
type Currency string

// NewCurrency normalizes and validates a currency code against the ISO 4217 table.
func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 || money.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, code)
	}
	return Currency(code), nil
}

// MustCurrency is NewCurrency for compile-time constants and tests.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the three-letter code.
func (c Currency) Code() string { return string(c) }

func (c Currency) String() string { return string(c) }

// fraction returns the number of minor-unit digits, 2 when unknown.
func (c Currency) fraction() int {
	if cur := money.GetCurrency(string(c)); cur != nil {
		return cur.Fraction
	}
	return 2
}
