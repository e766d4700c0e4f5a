package storage

import (
	"context"
	"errors"

	"github.com/kylycht/currconv/model"
)

// ErrNoSnapshot is returned when nothing was persisted yet
var ErrNoSnapshot = errors.New("no rates snapshot")

// Snapshot interface describes the flat
// storage of the last fetched feed
type Snapshot interface {
	// Save replaces the stored feed
	// with data
	Save(ctx context.Context, data []byte) error

	// Load returns the stored feed
	// exactly as it was saved
	Load(ctx context.Context) ([]byte, error)
}

// Cache interface describes the holder
// of the currently published rates table
type Cache interface {
	// Table returns the current table,
	// it must be treated as read-only
	Table() *model.Table

	// Refresh reloads the rates and
	// swaps the table on success
	Refresh(ctx context.Context) error
}
