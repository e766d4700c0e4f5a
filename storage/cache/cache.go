package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/service"
	"github.com/kylycht/currconv/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	refreshTimeout = 2 * time.Minute
	refreshKey     = "refresh"
)

type MCache struct {
	lock     sync.RWMutex       // rw lock guards table
	table    *model.Table       // currently published table, never mutated
	rates    service.Rates      // rates provider used to reload the table
	interval time.Duration      // refresh period, 0 disables the ticker
	ticker   *time.Ticker       // ticker to refresh cache every interval
	group    singleflight.Group // collapses concurrent refreshes
	doneC    chan struct{}      // chan to signal ticker stoppage
	once     sync.Once
}

var _ storage.Cache = (*MCache)(nil)

func New(rates service.Rates, interval time.Duration) (*MCache, error) {
	c := &MCache{
		rates:    rates,
		interval: interval,
		doneC:    make(chan struct{}),
	}

	return c, c.init()
}

// Table implements storage.Cache.
func (m *MCache) Table() *model.Table {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.table
}

// Refresh implements storage.Cache.
// Concurrent callers share a single reload; on failure the old table stays.
func (m *MCache) Refresh(ctx context.Context) error {
	_, err, shared := m.group.Do(refreshKey, func() (interface{}, error) {
		table, report, err := m.rates.Reload(ctx, time.Time{})
		if err != nil {
			return nil, err
		}

		m.swap(table)
		log.Info().
			Int("total", table.Len()).
			Int("skipped", report.Skipped).
			Msg("rates cache refreshed")

		return nil, nil
	})
	if shared {
		log.Debug().Msg("joined in-flight refresh")
	}

	return err
}

// Close stops the periodic refresh.
func (m *MCache) Close() {
	m.once.Do(func() {
		close(m.doneC)
		if m.ticker != nil {
			m.ticker.Stop()
		}
	})
}

func (m *MCache) swap(table *model.Table) {
	m.lock.Lock()
	m.table = table
	m.lock.Unlock()
}

func (m *MCache) init() error {
	ctx, cancelFn := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancelFn()

	// initialize cache, fall back to the last snapshot when the bank is unreachable
	if err := m.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("unable to refresh rates, using last snapshot")

		table, _, loadErr := m.rates.Load(ctx)
		if loadErr != nil {
			return fmt.Errorf("initialize rates cache: %w", loadErr)
		}
		m.swap(table)
	}

	if m.interval <= 0 {
		return nil
	}

	m.ticker = time.NewTicker(m.interval)

	go func() {
		for {
			select {
			case <-m.doneC:
				return

			case t := <-m.ticker.C:
				ctx, cancelFn := context.WithTimeout(context.Background(), refreshTimeout)
				if err := m.Refresh(ctx); err != nil {
					log.Error().Err(err).Str("time", t.String()).Dur("retry_in", m.interval).Msg("unable to update cache")
				}
				cancelFn()
			}
		}
	}()

	return nil
}
