package wallets

import (
	"context"
	"fmt"
	"time"

	xhttp "github.com/Scotty108/Cascadian-sub002/pkg/http"
)

// IndexerClient wraps the position-indexer HTTP API. The indexer tracks
// on-chain positions and wallet classifications; this service only reads
// from it.
type IndexerClient struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

// ClientOption configures IndexerClient.
type ClientOption func(*IndexerClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *IndexerClient) {
		if d > 0 {
			c.client = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

// WithRetryAttempts sets how many times a transient failure is retried.
func WithRetryAttempts(n int) ClientOption {
	return func(c *IndexerClient) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// NewIndexerClient creates a client for the position indexer.
func NewIndexerClient(baseURL string, opts ...ClientOption) *IndexerClient {
	c := &IndexerClient{
		baseURL:  baseURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(5 * time.Second)),
		attempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches path with query params and decodes the JSON body into
// dest, retrying transient failures with linear backoff.
func (c *IndexerClient) getJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if c.client == nil || c.baseURL == "" {
		return fmt.Errorf("indexer client not initialized")
	}

	var err error
	for i := 1; i <= c.attempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + path,
			QueryParams: query,
		}, dest)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("get %s: %w", path, err)
}
