package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/storage"
	"github.com/kylycht/currconv/storage/persistence"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotFeed = `<?xml version="1.0" encoding="UTF-8"?>
<ValCurs Date="17.10.2026">
	<Valute><CharCode>USD</CharCode><Nominal>1</Nominal><Name>Доллар США</Name><Value>81,1012</Value><VunitRate>81,1012</VunitRate></Valute>
	<Valute><CharCode>JPY</CharCode><Nominal>100</Nominal><Name>Японских иен</Name><Value>54,321</Value><VunitRate>0,54321</VunitRate></Valute>
	<Valute><CharCode>BAD</CharCode><Nominal>10</Nominal><Name>Broken</Name><Value>999</Value><VunitRate>2</VunitRate></Valute>
</ValCurs>`

type fakeFetcher struct {
	data  []byte
	err   error
	dates []time.Time
}

func (f *fakeFetcher) Fetch(_ context.Context, date time.Time) ([]byte, error) {
	f.dates = append(f.dates, date)
	return f.data, f.err
}

func newTestRates(fetcher *fakeFetcher) (*Rates, *persistence.Persistence) {
	p := persistence.New(afero.NewMemMapFs(), "/data/"+persistence.DefaultFileName)
	return New(fetcher, p), p
}

func TestRates_Reload(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(snapshotFeed)}
	r, p := newTestRates(fetcher)

	date := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)
	table, report, err := r.Reload(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date}, fetcher.dates)

	stored, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshotFeed, string(stored))

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Skipped)
	assert.ErrorIs(t, report.Errors[0], model.ErrIntegrity)

	reloaded, _, err := r.Load(context.Background())
	require.NoError(t, err)

	want := table.Currencies()
	got := reloaded.Currencies()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Code(), got[i].Code())
		assert.True(t, want[i].UnitCost().Equal(got[i].UnitCost()), want[i].Code())
	}
}

func TestRates_UpdateFetchError(t *testing.T) {
	fetchErr := errors.New("bank is down")
	r, p := newTestRates(&fakeFetcher{err: fetchErr})
	require.NoError(t, p.Save(context.Background(), []byte(snapshotFeed)))

	table, _, err := r.Reload(context.Background(), time.Time{})
	assert.ErrorIs(t, err, fetchErr)
	assert.Nil(t, table)

	stored, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshotFeed, string(stored), "previous snapshot must survive a failed update")
}

func TestRates_Load(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		wantErr error
	}{
		{"no snapshot", "", storage.ErrNoSnapshot},
		{"broken snapshot", "<Rates/>", model.ErrSchema},
		{"bad date", `<ValCurs Date="17/10/2026"></ValCurs>`, model.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, p := newTestRates(&fakeFetcher{})
			if tt.stored != "" {
				require.NoError(t, p.Save(context.Background(), []byte(tt.stored)))
			}

			table, _, err := r.Load(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, table)
		})
	}
}
