package service

import (
	"context"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/service/ingest"
)

// Fetcher interface describes
// the source of daily rates feeds
type Fetcher interface {
	// Fetch returns the raw feed
	// with rates valid for given date
	Fetch(ctx context.Context, date time.Time) ([]byte, error)
}

// Rates interface describes the query
// surface used by the REPL and the HTTP controller
type Rates interface {
	// Update fetches rates for given date
	// and persists them, zero date means today
	Update(ctx context.Context, date time.Time) error

	// Load parses the persisted snapshot
	// into a fresh table
	Load(ctx context.Context) (*model.Table, ingest.Report, error)

	// Reload is Update followed by Load
	Reload(ctx context.Context, date time.Time) (*model.Table, ingest.Report, error)
}
