// internal/sources/github_test.go
package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "omnisearch/internal/common/errors"
)

func TestGitHubClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "stars", r.URL.Query().Get("sort"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		w.Write([]byte(`{
			"items": [
				{"full_name": "golang/go", "description": "The Go programming language", "html_url": "https://github.com/golang/go", "stargazers_count": 120000, "language": "Go"},
				{"full_name": "empty/desc", "description": "", "html_url": "https://github.com/empty/desc", "stargazers_count": 1, "language": ""}
			]
		}`))
	}))
	defer server.Close()

	client := NewGitHubClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "go"})

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "golang/go", items[0].Title)
	assert.Equal(t, "120000", items[0].Fields["stars"])
	assert.Equal(t, "No description", items[1].Snippet)
}

func TestGitHubClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewGitHubClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "go"})

	assert.Nil(t, items)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeBadStatus, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "rate limit")
}
