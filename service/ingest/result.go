package ingest

import (
	"fmt"
	"strings"

	"github.com/kylycht/currconv/model"
)

// Result is the outcome of validating one child record:
// either Currency is set or Err is a *RecordError.
type Result struct {
	Index    int            // position among the root children
	Currency model.Currency // valid when Err is nil
	Err      error
}

// OK reports whether the record was valid.
func (r Result) OK() bool {
	return r.Err == nil
}

// RecordError describes why a single record was rejected.
// It unwraps to one of the model error kinds.
type RecordError struct {
	Index int    // position among the root children
	Code  string // currency code, empty if not known yet
	Field string // offending element, empty if the record as a whole is wrong
	Err   error
}

func (e *RecordError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "<%s> #%d", CurrencyElement, e.Index+1)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field <%s>", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
