package feed

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
	"github.com/BabakRosewater/inventory-history/internal/platform/logger"
)

const defaultUserAgent = "inventory-history-bot"

var validate = validator.New()

// Fetcher retrieves the raw feed bytes from upstream
type Fetcher interface {
	Fetch(ctx context.Context) (urlUsed string, body []byte, err error)
}

// HTTPFetcher tries an ordered list of endpoints until one yields a
// non-empty body. The upstream serves the same file over https and http;
// https is listed first and http is the fallback for cert trouble
type HTTPFetcher struct {
	URLs      []string
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a fetcher over the given fallback URL list.
// insecure disables TLS verification for upstreams with broken certs
func NewHTTPFetcher(urls []string, timeout time.Duration, insecure bool) (*HTTPFetcher, error) {
	if err := validate.Var(urls, "required,min=1,dive,url"); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "invalid feed URL list")
	}
	client := &http.Client{Timeout: timeout}
	if insecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // operator opt-in knob
		}
	}
	return &HTTPFetcher{URLs: urls, Client: client, UserAgent: defaultUserAgent}, nil
}

// Fetch tries each URL in order and returns the first non-empty body.
// All endpoints failing is an Unavailable coded error carrying the last cause
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, []byte, error) {
	l := logger.Named("feed")
	var last error
	for _, u := range f.URLs {
		body, err := f.fetchOne(ctx, u)
		if err != nil {
			l.Warn().Str("url", u).Err(err).Msg("feed endpoint failed; trying next")
			last = err
			continue
		}
		return u, body, nil
	}
	return "", nil, perr.Wrap(last, perr.ErrorCodeUnavailable, "feed download failed on all endpoints")
}

func (f *HTTPFetcher) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, perr.Unavailablef("unexpected status %d for %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, perr.Unavailablef("empty response from %s", url)
	}
	return body, nil
}
