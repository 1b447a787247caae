// internal/sources/wikipedia.go
package sources

import (
	"context"
	"net/url"
	"strconv"

	commonhttp "omnisearch/internal/common/http"
)

const wikipediaBaseURL = "https://en.wikipedia.org/w/api.php"

// WikipediaClient searches English Wikipedia and returns intro extracts of
// the best-matching pages.
type WikipediaClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewWikipediaClient(hc *commonhttp.Client, opts Options) *WikipediaClient {
	c := &WikipediaClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = wikipediaBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *WikipediaClient) ID() SourceID { return SourceWikipedia }

func (c *WikipediaClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "search")
	params.Set("gsrsearch", q.Text)
	params.Set("gsrlimit", strconv.Itoa(resultCount(q, c.maxResults)))
	params.Set("prop", "extracts|info")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("exlimit", "max")
	params.Set("inprop", "url")
	params.Set("format", "json")

	var data struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
				FullURL string `json:"fullurl"`
				Index   int    `json:"index"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	// Pages come back keyed by page ID; the index field restores the
	// search ranking order.
	items := make([]SourceItem, 0, len(data.Query.Pages))
	for range data.Query.Pages {
		items = append(items, SourceItem{})
	}
	for _, page := range data.Query.Pages {
		idx := page.Index - 1
		if idx < 0 || idx >= len(items) {
			continue
		}
		items[idx] = SourceItem{
			Title:   page.Title,
			Snippet: page.Extract,
			URL:     page.FullURL,
		}
	}

	// Drop any holes left by out-of-range indices.
	out := items[:0]
	for _, it := range items {
		if it.Title != "" {
			out = append(out, it)
		}
	}
	return out, nil
}
