package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	ReferenceCode = "RUB"              // ReferenceCode every cost is denominated in
	ReferenceName = "Российский рубль" // ReferenceName display name of the reference currency
)

// Tolerance allowed between unit cost * amount and lot cost
var Tolerance = decimal.New(1, -6)

// Currency holds a single validated quote.
// Fields are unexported so that a Currency can only be obtained
// through NewCurrency; copies are independent values.
type Currency struct {
	code     string          // 3 uppercase latin letters
	name     string          // display name
	amount   int             // quoted lot size
	lotCost  decimal.Decimal // cost of amount units in RUB
	unitCost decimal.Decimal // cost of one unit in RUB
}

// NewCurrency validates every field and the lot/unit cost integrity.
// The code is taken as is, callers must upper-case it beforehand.
func NewCurrency(code, name string, amount int, lotCost, unitCost decimal.Decimal) (Currency, error) {
	if !IsValidCode(code) {
		return Currency{}, fmt.Errorf("%w: code must consist of 3 uppercase latin letters, got %q", ErrInvalidArgument, code)
	}
	if amount <= 0 {
		return Currency{}, fmt.Errorf("%w: amount of %s must be a positive integer, got %d", ErrInvalidArgument, code, amount)
	}
	if !lotCost.IsPositive() {
		return Currency{}, fmt.Errorf("%w: lot cost of %s must be positive, got %s", ErrInvalidArgument, code, lotCost)
	}
	if !unitCost.IsPositive() {
		return Currency{}, fmt.Errorf("%w: unit cost of %s must be positive, got %s", ErrInvalidArgument, code, unitCost)
	}
	if err := CheckIntegrity(amount, lotCost, unitCost); err != nil {
		return Currency{}, fmt.Errorf("%s: %w", code, err)
	}

	return Currency{
		code:     code,
		name:     name,
		amount:   amount,
		lotCost:  lotCost,
		unitCost: unitCost,
	}, nil
}

// IsValidCode reports whether code is exactly 3 uppercase ASCII letters.
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// CheckIntegrity verifies that unitCost * amount equals lotCost within Tolerance.
func CheckIntegrity(amount int, lotCost, unitCost decimal.Decimal) error {
	diff := unitCost.Mul(decimal.NewFromInt(int64(amount))).Sub(lotCost).Abs()
	if diff.GreaterThan(Tolerance) {
		return fmt.Errorf("%w: unit cost (%s) * amount (%d) != lot cost (%s)",
			ErrIntegrity, unitCost.StringFixed(4), amount, lotCost.StringFixed(4))
	}
	return nil
}

func (c Currency) Code() string              { return c.code }
func (c Currency) Name() string              { return c.name }
func (c Currency) Amount() int               { return c.amount }
func (c Currency) LotCost() decimal.Decimal  { return c.lotCost }
func (c Currency) UnitCost() decimal.Decimal { return c.unitCost }

// RateTo returns how many units of other equal one unit of c.
// Both unit costs are in RUB, so no lookup is involved.
func (c Currency) RateTo(other Currency) decimal.Decimal {
	return c.unitCost.Div(other.unitCost)
}

// Describe renders "amount code (name) = lotCost RUB".
func (c Currency) Describe() string {
	return fmt.Sprintf("%d %s (%s) = %s %s", c.amount, c.code, c.name, c.lotCost.StringFixed(4), ReferenceCode)
}

func (c Currency) String() string {
	return c.Describe()
}
