// internal/sources/stackoverflow.go
package sources

import (
	"context"
	"html"
	"net/url"
	"strconv"

	commonhttp "omnisearch/internal/common/http"
)

const stackExchangeBaseURL = "https://api.stackexchange.com/2.3"

// StackOverflowClient searches Stack Overflow questions by title via the
// Stack Exchange API.
type StackOverflowClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewStackOverflowClient(hc *commonhttp.Client, opts Options) *StackOverflowClient {
	c := &StackOverflowClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = stackExchangeBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *StackOverflowClient) ID() SourceID { return SourceStackOverflow }

func (c *StackOverflowClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("intitle", q.Text)
	params.Set("site", "stackoverflow")
	params.Set("sort", "relevance")
	params.Set("order", "desc")
	params.Set("pagesize", strconv.Itoa(resultCount(q, c.maxResults)))

	var data struct {
		Items []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Score       int    `json:"score"`
			AnswerCount int    `json:"answer_count"`
			IsAnswered  bool   `json:"is_answered"`
		} `json:"items"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/search?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(data.Items))
	for _, question := range data.Items {
		answered := "unanswered"
		if question.IsAnswered {
			answered = "answered"
		}
		items = append(items, SourceItem{
			// Question titles come back HTML-escaped.
			Title:   html.UnescapeString(question.Title),
			Snippet: "Score " + strconv.Itoa(question.Score) + ", " + strconv.Itoa(question.AnswerCount) + " answers (" + answered + ")",
			URL:     question.Link,
			Fields: map[string]string{
				"score":   strconv.Itoa(question.Score),
				"answers": strconv.Itoa(question.AnswerCount),
			},
		})
	}
	return items, nil
}
