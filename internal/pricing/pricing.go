// Package pricing maps a fiat-denominated plan price to a ledger token
// amount. Every currency in the catalog carries the price of its most
// expensive item; that item costs MaxTokenAmount tokens, and everything else
// is priced strictly proportionally. No exchange-rate oracle is involved.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// OctasPerToken is the ledger's subdivision of one whole token.
const OctasPerToken = 100_000_000

var ErrUnknownCurrency = errors.New("unknown currency")

// DustFloor is the minimum nonzero token amount. Conversions never go below
// it, so a zero-price item still converts to a non-empty transfer; callers
// that want free semantics must short-circuit before converting.
var DustFloor = decimal.New(1, -4) // 0.0001

// TokenAmount is a converted price in whole tokens, at most 4 decimal
// places, always >= DustFloor.
type TokenAmount struct {
	amount decimal.Decimal
}

func (t TokenAmount) Decimal() decimal.Decimal { return t.amount }

func (t TokenAmount) String() string { return t.amount.String() }

// Octas converts to the ledger's smallest unit. Exact: amounts carry at most
// 4 decimal places against 8 subdivision digits.
func (t TokenAmount) Octas() uint64 {
	return uint64(t.amount.Shift(8).IntPart())
}

type Converter struct {
	// MaxReferencePrice holds, per currency code, the fiat price of the most
	// expensive catalog item in that currency.
	MaxReferencePrice map[string]decimal.Decimal
	// MaxTokenAmount is the token cost of that most expensive item.
	MaxTokenAmount decimal.Decimal
}

// ToTokenAmount converts fiat to tokens: round4(fiat/maxRef*maxToken),
// floor-clamped at DustFloor. The clamp makes the conversion total for any
// known currency; only an unconfigured currency is an error.
func (c Converter) ToTokenAmount(fiat decimal.Decimal, currency string) (TokenAmount, error) {
	maxRef, ok := c.MaxReferencePrice[currency]
	if !ok || !maxRef.IsPositive() {
		return TokenAmount{}, ErrUnknownCurrency
	}

	amount := fiat.Div(maxRef).Mul(c.MaxTokenAmount).Round(4)
	if amount.LessThan(DustFloor) {
		amount = DustFloor
	}
	return TokenAmount{amount: amount}, nil
}
