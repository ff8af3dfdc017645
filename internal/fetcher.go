package perftop

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/api"
)

// Fetcher performs GET requests against one Performance Analyzer endpoint.
type Fetcher struct {
	endpoint string
	client   api.Client
	timeout  time.Duration
	log      Logger
	stats    *Stats
}

// NewFetcher creates a fetcher for endpoint. Certificates are not verified:
// Performance Analyzer usually runs with the cluster's self-signed certificate.
func NewFetcher(endpoint string, log Logger, stats *Stats) (*Fetcher, error) {
	opts, err := ParseURLOptions(endpoint, "/")
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		Address:      opts.BaseURL().String(),
		RoundTripper: insecureRoundTripper(),
	})
	if err != nil {
		return nil, wrapError(err, ErrConfig, "failed to create client for %s", endpoint)
	}

	return &Fetcher{
		endpoint: endpoint,
		client:   client,
		timeout:  FetchTimeout(),
		log:      log,
		stats:    stats,
	}, nil
}

func insecureRoundTripper() http.RoundTripper {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
	}
}

// Endpoint returns the endpoint as configured.
func (f *Fetcher) Endpoint() string {
	return f.endpoint
}

func (f *Fetcher) setTimeout(timeout time.Duration) {
	f.timeout = timeout
}

// Get requests path and returns the whole body.
// Any status code is a successful transport; error envelopes are the normalizer's business.
func (f *Fetcher) Get(ctx context.Context, path string) (string, error) {
	opts, err := ParseURLOptions(f.endpoint, path)
	if err != nil {
		return "", err
	}
	u := f.client.URL(opts.Path, nil)
	u.RawQuery = opts.Query

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", wrapError(err, ErrTransport, "failed to build request for %s", u.Redacted())
	}

	start := time.Now()
	_, body, err := f.client.Do(ctx, req)
	f.stats.observeFetch(time.Since(start), err)
	if err != nil {
		return "", wrapError(err, ErrTransport, "request to %s failed", u.Redacted())
	}
	return string(body), nil
}

// Fetch is Get with transport failures reported to the log as an empty body.
// Callers treat "" as no data.
func (f *Fetcher) Fetch(ctx context.Context, path string) string {
	body, err := f.Get(ctx, path)
	if err != nil {
		f.log.Error("%v", err)
		return ""
	}
	return body
}
