// internal/sources/ddgnews.go
package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

const ddgNewsBaseURL = "https://duckduckgo.com/html/"

// NewsClient scrapes the DuckDuckGo HTML results page for news items and
// falls back to the plain web-search API when the page yields nothing.
type NewsClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
	fallback   *WebSearchClient
}

func NewNewsClient(hc *commonhttp.Client, opts Options, fallback *WebSearchClient) *NewsClient {
	c := &NewsClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults, fallback: fallback}
	if c.baseURL == "" {
		c.baseURL = ddgNewsBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *NewsClient) ID() SourceID { return SourceNews }

func (c *NewsClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("q", q.Text+" news")
	params.Set("kl", "us-en")

	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := getRaw(ctx, c.hc, c.baseURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewBadStatusError(resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.NewParseFailureError(err)
	}

	limit := resultCount(q, c.maxResults)
	searchURL := "https://duckduckgo.com/?q=" + url.QueryEscape(q.Text)

	var items []SourceItem
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find(".result__a").First().Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		if title == "" {
			return true
		}
		items = append(items, SourceItem{
			Title:   title,
			Snippet: snippet,
			URL:     searchURL,
			Fields:  map[string]string{"source": "DuckDuckGo"},
		})
		return len(items) < limit
	})

	if len(items) == 0 && c.fallback != nil {
		return c.fallback.Fetch(ctx, Query{Text: q.Text + " news", MaxResults: limit})
	}

	return items, nil
}
