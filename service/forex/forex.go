package forex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/service"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	baseURL           string = "https://www.cbr.ru/scripts/XML_daily.asp" // daily rates of the Bank of Russia
	dateParam         string = "date_req"                                 // query parameter carrying the date
	requestDateFormat string = "02/01/2006"                               // dd/MM/yyyy
	userAgent         string = "currconv/1.0"
)

// Options configure the feed client, zero values fall back to defaults
type Options struct {
	URL           string        // feed URL
	Attempts      int           // requests made before giving up
	Backoff       time.Duration // pause between attempts
	Timeout       time.Duration // timeout of a single request
	RatePerSecond float64       // outbound request limit, 0 disables it
}

// DefaultOptions mirror the behaviour of the bank's reference client
func DefaultOptions() Options {
	return Options{
		URL:      baseURL,
		Attempts: 5,
		Backoff:  time.Second,
		Timeout:  10 * time.Second,
	}
}

type client struct {
	baseURL     *url.URL         // feed URL without date parameter
	httpClient  *http.Client     // HTTP client used to communicate with the bank
	rateLimiter *rate.Limiter    // rate limiter for outbound requests
	retrier     *retrier.Retrier // bounded retry of failed requests
	now         func() time.Time // clock used when no date is given
}

// withDefaults replaces zero or negative fields with DefaultOptions.
// RatePerSecond is kept as is, 0 means unlimited.
func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.URL == "" {
		o.URL = defaults.URL
	}
	if o.Attempts <= 0 {
		o.Attempts = defaults.Attempts
	}
	if o.Backoff <= 0 {
		o.Backoff = defaults.Backoff
	}
	if o.Timeout <= 0 {
		o.Timeout = defaults.Timeout
	}
	return o
}

func New(opts Options) (service.Fetcher, error) {
	opts = opts.withDefaults()

	base, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse rates url %q: %w", opts.URL, err)
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	c := &client{
		rateLimiter: rate.NewLimiter(limit, 1),
		retrier:     retrier.New(retrier.ConstantBackoff(opts.Attempts-1, opts.Backoff), retryClassifier{}),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: roundTripperFn(
				func(req *http.Request) (*http.Response, error) {
					req.Header.Set("User-Agent", userAgent)
					req.Header.Set("Accept", "application/xml, text/xml")

					return http.DefaultTransport.RoundTrip(req)
				},
			),
		},
		baseURL: base,
		now:     time.Now,
	}

	return c, nil
}

func (f *client) Do(ctx context.Context, req *http.Request, w io.Writer) error {
	err := f.rateLimiter.Wait(ctx)
	if err != nil {
		return err
	}

	log.Debug().Str("url", req.URL.String()).Msg("fetching rates from API")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unable to fetch rates due to code: %d", resp.StatusCode)
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

// Fetch implements service.Fetcher.
// GET /scripts/XML_daily.asp?date_req=17/10/2026
func (f *client) Fetch(ctx context.Context, date time.Time) ([]byte, error) {
	if date.IsZero() {
		date = f.now()
	}

	u := *f.baseURL
	query := u.Query()
	query.Set(dateParam, date.Format(requestDateFormat))
	u.RawQuery = query.Encode()

	var (
		body    bytes.Buffer
		attempt int
	)

	err := f.retrier.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		body.Reset()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}

		if err := f.Do(ctx, req, &body); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("unable to fetch rates")
			return err
		}

		log.Debug().Int("attempt", attempt).Int("bytes", body.Len()).Msg("rates fetched")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s (%d attempts): %w", date.Format(model.DateFormat), attempt, err)
	}

	return body.Bytes(), nil
}

// retryClassifier retries every failure except a cancelled request.
type retryClassifier struct{}

func (retryClassifier) Classify(err error) retrier.Action {
	if err == nil {
		return retrier.Succeed
	}
	if errors.Is(err, context.Canceled) {
		return retrier.Fail
	}
	return retrier.Retry
}

type roundTripperFn func(*http.Request) (*http.Response, error)

func (fn roundTripperFn) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}
