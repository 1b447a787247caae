// internal/sources/github.go
package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

const githubBaseURL = "https://api.github.com"

// GitHubClient searches repositories by stars. GitHub rate-limits
// unauthenticated search aggressively, so a 403 is surfaced with an
// explicit message instead of the generic status error.
type GitHubClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewGitHubClient(hc *commonhttp.Client, opts Options) *GitHubClient {
	c := &GitHubClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = githubBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *GitHubClient) ID() SourceID { return SourceGitHub }

func (c *GitHubClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(resultCount(q, c.maxResults)))

	header := http.Header{}
	header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := getRaw(ctx, c.hc, c.baseURL+"/search/repositories?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.NewBadStatusErrorf(resp.StatusCode, "github search rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewBadStatusError(resp.StatusCode)
	}

	var data struct {
		Items []struct {
			FullName    string `json:"full_name"`
			Description string `json:"description"`
			HTMLURL     string `json:"html_url"`
			Stars       int    `json:"stargazers_count"`
			Language    string `json:"language"`
		} `json:"items"`
	}
	if err := decodeJSONBody(resp, &data); err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(data.Items))
	for _, repo := range data.Items {
		desc := repo.Description
		if desc == "" {
			desc = "No description"
		}
		items = append(items, SourceItem{
			Title:   repo.FullName,
			Snippet: desc,
			URL:     repo.HTMLURL,
			Fields: map[string]string{
				"stars":    strconv.Itoa(repo.Stars),
				"language": repo.Language,
			},
		})
	}
	return items, nil
}
