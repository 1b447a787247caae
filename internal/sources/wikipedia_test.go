// internal/sources/wikipedia_test.go
package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWikipediaClient_Fetch_RestoresSearchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query", r.URL.Query().Get("action"))
		assert.Equal(t, "search", r.URL.Query().Get("generator"))
		assert.Equal(t, "france", r.URL.Query().Get("gsrsearch"))
		// Page IDs deliberately out of ranking order.
		w.Write([]byte(`{
			"query": {
				"pages": {
					"999": {"title": "French Revolution", "extract": "A period of upheaval.", "fullurl": "https://en.wikipedia.org/wiki/French_Revolution", "index": 2},
					"111": {"title": "France", "extract": "Paris is the capital of France.", "fullurl": "https://en.wikipedia.org/wiki/France", "index": 1}
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewWikipediaClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "france"})

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "France", items[0].Title)
	assert.Equal(t, "French Revolution", items[1].Title)
	assert.Contains(t, items[0].Snippet, "Paris")
}

func TestWikipediaClient_Fetch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"pages": {}}}`))
	}))
	defer server.Close()

	client := NewWikipediaClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "zxqy no such thing"})

	assert.NoError(t, err)
	assert.Empty(t, items)
}
