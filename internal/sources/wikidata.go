// internal/sources/wikidata.go
package sources

import (
	"context"
	"net/url"
	"strconv"

	commonhttp "omnisearch/internal/common/http"
)

const wikidataBaseURL = "https://www.wikidata.org/w/api.php"

// WikidataClient searches Wikidata entities by label.
type WikidataClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewWikidataClient(hc *commonhttp.Client, opts Options) *WikidataClient {
	c := &WikidataClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = wikidataBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *WikidataClient) ID() SourceID { return SourceWikidata }

func (c *WikidataClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", q.Text)
	params.Set("language", "en")
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(resultCount(q, c.maxResults)))

	var data struct {
		Search []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			Description string `json:"description"`
			ConceptURI  string `json:"concepturi"`
		} `json:"search"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(data.Search))
	for _, entity := range data.Search {
		items = append(items, SourceItem{
			Title:   entity.Label,
			Snippet: entity.Description,
			URL:     "https://www.wikidata.org/wiki/" + entity.ID,
			Fields: map[string]string{
				"id":         entity.ID,
				"concepturi": entity.ConceptURI,
			},
		})
	}
	return items, nil
}
