package converter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kylycht/currconv/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	table      *model.Table
	next       *model.Table
	refreshErr error
}

func (f *fakeCache) Table() *model.Table { return f.table }

func (f *fakeCache) Refresh(context.Context) error {
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.table = f.next
	return nil
}

func testTable(t *testing.T, day int, codes ...string) *model.Table {
	t.Helper()

	costs := map[string]int64{"USD": 80, "EUR": 100, "CNY": 11}
	table := model.NewTable(time.Date(2026, time.October, day, 0, 0, 0, 0, time.UTC))
	for _, code := range codes {
		cost := decimal.NewFromInt(costs[code])
		c, err := model.NewCurrency(code, code, 1, cost, cost)
		require.NoError(t, err)
		require.NoError(t, table.Add(c))
	}
	return table
}

func newTestApp(cache *fakeCache) *fiber.App {
	app := fiber.New()
	New(cache).Register(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, target string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestConverter_Convert(t *testing.T) {
	app := newTestApp(&fakeCache{table: testTable(t, 17, "USD", "EUR")})

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantBody string
	}{
		{"convert", "/convert?from=USD&to=EUR&amount=3.1", http.StatusOK, "2.4800"},
		{"comma amount", "/convert?from=usd&to=eur&amount=3,1", http.StatusOK, "2.4800"},
		{"default amount", "/convert?from=EUR&to=RUB", http.StatusOK, "100.0000"},
		{"zero", "/convert?from=EUR&to=USD&amount=0", http.StatusOK, "0.0000"},
		{"bad amount", "/convert?from=USD&to=EUR&amount=abc", http.StatusBadRequest, `invalid amount "abc", expected a decimal number`},
		{"exponent amount", "/convert?from=USD&to=EUR&amount=1e3", http.StatusBadRequest, `invalid amount "1e3"`},
		{"bad code", "/convert?from=US&to=EUR", http.StatusBadRequest, `invalid currency code "US", expected 3 latin letters`},
		{"missing code", "/convert?from=USD", http.StatusBadRequest, `invalid currency code ""`},
		{"unknown code", "/convert?from=USD&to=CNY", http.StatusNotFound, "no currency with code CNY in rates for 17.10.2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, http.MethodGet, tt.target)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestConverter_Rate(t *testing.T) {
	app := newTestApp(&fakeCache{table: testTable(t, 17, "USD", "EUR")})

	code, body := do(t, app, http.MethodGet, "/rate?from=USD&to=EUR")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0.8000", body)

	code, body = do(t, app, http.MethodGet, "/rate?from=XXX&to=YYY")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "XXX, YYY")
}

func TestConverter_Rates(t *testing.T) {
	app := newTestApp(&fakeCache{table: testTable(t, 17, "USD", "EUR")})

	code, body := do(t, app, http.MethodGet, "/rates")
	require.Equal(t, http.StatusOK, code)

	var resp ratesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "17.10.2026", resp.Date)
	assert.Equal(t, 3, resp.Total)

	codes := make([]string, 0, len(resp.Currencies))
	for _, c := range resp.Currencies {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"RUB", "USD", "EUR"}, codes)
	assert.True(t, decimal.NewFromInt(80).Equal(resp.Currencies[1].UnitCost))
}

func TestConverter_Refresh(t *testing.T) {
	cache := &fakeCache{table: testTable(t, 17), next: testTable(t, 18, "CNY")}
	app := newTestApp(cache)

	code, body := do(t, app, http.MethodPost, "/refresh")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"date":"18.10.2026"`)

	code, body = do(t, app, http.MethodGet, "/convert?from=CNY&to=RUB&amount=2")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "22.0000", body)

	cache.refreshErr = errors.New("bank is down")
	code, body = do(t, app, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body, "bank is down")
	assert.Equal(t, 18, cache.Table().Date().Day())
}
