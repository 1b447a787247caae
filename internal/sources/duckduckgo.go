// internal/sources/duckduckgo.go
package sources

import (
	"context"
	"net/url"
	"strings"

	commonhttp "omnisearch/internal/common/http"
)

const duckduckgoBaseURL = "https://api.duckduckgo.com/"

// ddgResponse covers both the web-search and instant-answer shapes of the
// DuckDuckGo answer API.
type ddgResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Image         string `json:"Image"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// WebSearchClient queries the DuckDuckGo answer API for web results:
// the instant answer plus related topics.
type WebSearchClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewWebSearchClient(hc *commonhttp.Client, opts Options) *WebSearchClient {
	c := &WebSearchClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = duckduckgoBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 5
	}
	return c
}

func (c *WebSearchClient) ID() SourceID { return SourceDuckDuckGo }

func (c *WebSearchClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	var data ddgResponse
	if err := getJSON(ctx, c.hc, c.baseURL+"?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	limit := resultCount(q, c.maxResults)
	var items []SourceItem

	if data.AbstractText != "" {
		title := data.Heading
		if title == "" {
			title = "Instant Answer"
		}
		items = append(items, SourceItem{
			Title:   title,
			Snippet: data.AbstractText,
			URL:     data.AbstractURL,
			Fields:  map[string]string{"type": "instant_answer"},
		})
	}

	for _, topic := range data.RelatedTopics {
		if len(items) >= limit {
			break
		}
		if topic.Text == "" {
			continue
		}
		title, snippet := splitTopicText(topic.Text)
		items = append(items, SourceItem{
			Title:   title,
			Snippet: snippet,
			URL:     topic.FirstURL,
			Fields:  map[string]string{"type": "related_topic"},
		})
	}

	return items, nil
}

// splitTopicText splits a related-topic line "Title - body" into parts.
func splitTopicText(text string) (title, snippet string) {
	if i := strings.Index(text, " - "); i >= 0 {
		return text[:i], text[i+3:]
	}
	return text, ""
}

// InstantAnswerClient queries the DuckDuckGo answer API for the single
// instant answer only.
type InstantAnswerClient struct {
	hc      *commonhttp.Client
	baseURL string
}

func NewInstantAnswerClient(hc *commonhttp.Client, opts Options) *InstantAnswerClient {
	c := &InstantAnswerClient{hc: hc, baseURL: opts.BaseURL}
	if c.baseURL == "" {
		c.baseURL = duckduckgoBaseURL
	}
	return c
}

func (c *InstantAnswerClient) ID() SourceID { return SourceInstantAnswer }

func (c *InstantAnswerClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("no_html", "1")

	var data ddgResponse
	if err := getJSON(ctx, c.hc, c.baseURL+"?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	if data.AbstractText == "" {
		return nil, nil
	}

	return []SourceItem{{
		Title:   data.Heading,
		Snippet: data.AbstractText,
		URL:     data.AbstractURL,
		Fields:  map[string]string{"image": data.Image},
	}}, nil
}
