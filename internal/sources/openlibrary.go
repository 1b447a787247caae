// internal/sources/openlibrary.go
package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	commonhttp "omnisearch/internal/common/http"
)

const openLibraryBaseURL = "https://openlibrary.org"

// BooksClient searches the Open Library catalogue.
type BooksClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewBooksClient(hc *commonhttp.Client, opts Options) *BooksClient {
	c := &BooksClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = openLibraryBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 5
	}
	return c
}

func (c *BooksClient) ID() SourceID { return SourceBooks }

func (c *BooksClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("limit", strconv.Itoa(resultCount(q, c.maxResults)))

	var data struct {
		Docs []struct {
			Title            string   `json:"title"`
			AuthorName       []string `json:"author_name"`
			FirstPublishYear int      `json:"first_publish_year"`
			Key              string   `json:"key"`
		} `json:"docs"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/search.json?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(data.Docs))
	for _, doc := range data.Docs {
		snippet := "Unknown author"
		if len(doc.AuthorName) > 0 {
			snippet = "by " + strings.Join(doc.AuthorName, ", ")
		}
		fields := map[string]string{}
		if doc.FirstPublishYear != 0 {
			fields["first_published"] = strconv.Itoa(doc.FirstPublishYear)
		}
		itemURL := ""
		if doc.Key != "" {
			itemURL = openLibraryBaseURL + doc.Key
		}
		items = append(items, SourceItem{
			Title:   doc.Title,
			Snippet: snippet,
			URL:     itemURL,
			Fields:  fields,
		})
	}
	return items, nil
}
