// internal/sources/arxiv.go
package sources

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

const arxivBaseURL = "http://export.arxiv.org/api/query"

// ArxivClient searches arXiv for scientific papers via its Atom API.
type ArxivClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewArxivClient(hc *commonhttp.Client, opts Options) *ArxivClient {
	c := &ArxivClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = arxivBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *ArxivClient) ID() SourceID { return SourceArxiv }

type arxivFeed struct {
	Entries []struct {
		ID        string `xml:"id"`
		Title     string `xml:"title"`
		Summary   string `xml:"summary"`
		Published string `xml:"published"`
		Authors   []struct {
			Name string `xml:"name"`
		} `xml:"author"`
		Categories []struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

func (c *ArxivClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+q.Text)
	params.Set("max_results", strconv.Itoa(resultCount(q, c.maxResults)))
	params.Set("sortBy", "relevance")

	resp, err := getRaw(ctx, c.hc, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewBadStatusError(resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperrors.NewParseFailureError(err)
	}

	items := make([]SourceItem, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, a.Name)
		}
		categories := make([]string, 0, len(entry.Categories))
		for _, cat := range entry.Categories {
			categories = append(categories, cat.Term)
		}
		published := entry.Published
		if len(published) >= 10 {
			published = published[:10]
		}
		items = append(items, SourceItem{
			Title:   strings.TrimSpace(entry.Title),
			Snippet: strings.TrimSpace(entry.Summary),
			URL:     entry.ID,
			Fields: map[string]string{
				"authors":    strings.Join(authors, ", "),
				"published":  published,
				"categories": strings.Join(categories, ", "),
			},
		})
	}
	return items, nil
}
