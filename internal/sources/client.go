// internal/sources/client.go
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

// Client is the uniform capability wrapper around one external API.
// Implementations differ only in request building and response
// normalization; they hold no mutable state, so concurrent fetches for
// different queries never interfere.
type Client interface {
	ID() SourceID
	Fetch(ctx context.Context, q Query) ([]SourceItem, error)
}

// Options configures a single source client. A zero BaseURL selects the
// provider's public endpoint; tests point it at a local fake.
type Options struct {
	BaseURL    string
	MaxResults int
}

// Invoke runs one fetch under its own deadline and converts the outcome
// into an immutable SourceResult. Every transport error, bad status, and
// parse failure is contained here; nothing propagates to the caller as a
// fault.
func Invoke(ctx context.Context, c Client, q Query, timeout time.Duration) SourceResult {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	items, err := c.Fetch(fctx, q)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || fctx.Err() == context.DeadlineExceeded {
			return SourceResult{
				Status:       StatusTimedOut,
				Elapsed:      elapsed,
				ErrorKind:    apperrors.CodeSourceTimeout,
				ErrorMessage: "no response within per-source timeout",
			}
		}
		return SourceResult{
			Status:       StatusFailure,
			Elapsed:      elapsed,
			ErrorKind:    apperrors.CodeOf(err),
			ErrorMessage: err.Error(),
		}
	}

	return SourceResult{
		Status:  StatusSuccess,
		Items:   items,
		Elapsed: elapsed,
	}
}

// getJSON issues a GET and decodes a JSON body. Transport errors are
// returned unwrapped so Invoke can still recognize deadline expiry;
// non-success statuses and decode failures come back typed.
func getJSON(ctx context.Context, hc *commonhttp.Client, rawURL string, header http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewBadStatusError(resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewParseFailureError(err)
	}
	return nil
}

// getRaw issues a GET and returns the open response. The caller owns the
// body and the status check.
func getRaw(ctx context.Context, hc *commonhttp.Client, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return hc.Do(req)
}

// decodeJSONBody decodes the body of an already status-checked response.
func decodeJSONBody(resp *http.Response, out interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewParseFailureError(err)
	}
	return nil
}

// resultCount resolves the per-request hint against a client default.
func resultCount(q Query, def int) int {
	if q.MaxResults > 0 {
		return q.MaxResults
	}
	return def
}
