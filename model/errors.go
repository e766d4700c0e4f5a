package model

import "errors"

// Error kinds. Concrete errors wrap exactly one (sometimes two) of these,
// so callers classify them with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument") // malformed code, amount or cost
	ErrSchema          = errors.New("schema error")     // feed structure does not match
	ErrNotFound        = errors.New("not found")        // unknown currency code
	ErrParse           = errors.New("parse error")      // unparseable number or date
	ErrIntegrity       = errors.New("integrity error")  // unit cost * amount != lot cost
)
