package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Table is the conversion engine: currencies keyed by code,
// all anchored to the reference currency.
//
// A Table is not safe for concurrent mutation. Once handed to readers
// it must not be modified; publish a new Table instead.
type Table struct {
	date       time.Time           // date the rates are valid for
	currencies map[string]Currency // lookup by code
	order      []string            // insertion order of codes
}

// NewTable creates a table holding only the reference currency.
func NewTable(date time.Time) *Table {
	t := &Table{
		date:       date,
		currencies: make(map[string]Currency),
	}

	ref := Reference()
	t.currencies[ref.code] = ref
	t.order = append(t.order, ref.code)
	return t
}

// Reference returns the reference currency record (RUB, 1:1).
func Reference() Currency {
	one := decimal.NewFromInt(1)
	return Currency{
		code:     ReferenceCode,
		name:     ReferenceName,
		amount:   1,
		lotCost:  one,
		unitCost: one,
	}
}

// Add inserts or overwrites the currency with the same code.
// The reference currency may be overwritten as well. A Currency that did
// not come from NewCurrency (the zero value) is rejected.
func (t *Table) Add(c Currency) error {
	if !IsValidCode(c.code) || !c.unitCost.IsPositive() {
		return fmt.Errorf("%w: currency %q was not built with NewCurrency", ErrInvalidArgument, c.code)
	}

	if _, ok := t.currencies[c.code]; !ok {
		t.order = append(t.order, c.code)
	}
	t.currencies[c.code] = c
	return nil
}

// Lookup returns a copy of the currency stored under code.
func (t *Table) Lookup(code string) (Currency, bool) {
	c, ok := t.currencies[code]
	return c, ok
}

// Rate returns the number of `to` units equal to one `from` unit.
func (t *Table) Rate(from, to string) (decimal.Decimal, error) {
	var missing []string

	cf, ok := t.currencies[from]
	if !ok {
		missing = append(missing, from)
	}
	ct, ok := t.currencies[to]
	if !ok && to != from {
		missing = append(missing, to)
	}

	if len(missing) > 0 {
		return decimal.Zero, fmt.Errorf("%w: no currency with code %s in rates for %s",
			ErrNotFound, strings.Join(missing, ", "), t.date.Format(DateFormat))
	}

	return cf.RateTo(ct), nil
}

// Convert converts amount units of `from` into `to`.
// The amount itself is not validated.
func (t *Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := t.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate), nil
}

// Currencies returns copies of all stored currencies in insertion order.
// Every call builds a fresh slice reflecting the table at call time.
func (t *Table) Currencies() []Currency {
	result := make([]Currency, 0, len(t.order))
	for _, code := range t.order {
		result = append(result, t.currencies[code])
	}
	return result
}

// Len returns the number of distinct codes, reference currency included.
func (t *Table) Len() int {
	return len(t.currencies)
}

// Date returns the as-of date of the rates.
func (t *Table) Date() time.Time {
	return t.date
}

// Populated reports whether anything besides the reference currency was added.
func (t *Table) Populated() bool {
	return len(t.currencies) > 1
}
