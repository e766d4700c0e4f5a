// Package rates glues the feed client, the snapshot store and the ingestion
// together into the query surface used by controllers.
package rates

import (
	"bytes"
	"context"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/service"
	"github.com/kylycht/currconv/service/ingest"
	"github.com/kylycht/currconv/storage"
	"github.com/rs/zerolog/log"
)

type Rates struct {
	fetcher  service.Fetcher  // source of raw feeds
	snapshot storage.Snapshot // last fetched feed
}

func New(fetcher service.Fetcher, snapshot storage.Snapshot) *Rates {
	return &Rates{fetcher: fetcher, snapshot: snapshot}
}

var _ service.Rates = (*Rates)(nil)

// Update implements service.Rates.
func (r *Rates) Update(ctx context.Context, date time.Time) error {
	data, err := r.fetcher.Fetch(ctx, date)
	if err != nil {
		return err
	}

	if err := r.snapshot.Save(ctx, data); err != nil {
		return err
	}

	log.Info().Int("bytes", len(data)).Msg("rates snapshot updated")
	return nil
}

// Load implements service.Rates.
func (r *Rates) Load(ctx context.Context) (*model.Table, ingest.Report, error) {
	data, err := r.snapshot.Load(ctx)
	if err != nil {
		return nil, ingest.Report{}, err
	}

	table, report, err := ingest.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, ingest.Report{}, err
	}

	log.Info().
		Int("total", table.Len()).
		Int("skipped", report.Skipped).
		Str("date", table.Date().Format(model.DateFormat)).
		Msg("rates loaded")

	return table, report, nil
}

// Reload implements service.Rates.
func (r *Rates) Reload(ctx context.Context, date time.Time) (*model.Table, ingest.Report, error) {
	if err := r.Update(ctx, date); err != nil {
		return nil, ingest.Report{}, err
	}
	return r.Load(ctx)
}
