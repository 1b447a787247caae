// internal/sources/quotes.go
package sources

import (
	"context"
	"net/url"
	"strconv"

	commonhttp "omnisearch/internal/common/http"
)

const quotableBaseURL = "https://api.quotable.io"

// QuotesClient searches Quotable for quotes matching the query and falls
// back to a random quote when the search comes up empty.
type QuotesClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewQuotesClient(hc *commonhttp.Client, opts Options) *QuotesClient {
	c := &QuotesClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = quotableBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *QuotesClient) ID() SourceID { return SourceQuotes }

type quotableQuote struct {
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

func (c *QuotesClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("limit", strconv.Itoa(resultCount(q, c.maxResults)))

	var data struct {
		Results []quotableQuote `json:"results"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/search/quotes?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	quotes := data.Results
	if len(quotes) == 0 {
		var random quotableQuote
		if err := getJSON(ctx, c.hc, c.baseURL+"/random", nil, &random); err != nil {
			return nil, err
		}
		if random.Content == "" {
			return nil, nil
		}
		quotes = []quotableQuote{random}
	}

	items := make([]SourceItem, 0, len(quotes))
	for _, quote := range quotes {
		items = append(items, SourceItem{
			Title:   quote.Author,
			Snippet: "\"" + quote.Content + "\"",
			Fields:  map[string]string{"author": quote.Author},
		})
	}
	return items, nil
}
