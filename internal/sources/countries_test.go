// internal/sources/countries_test.go
package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const franceJSON = `[{
	"name": {"common": "France", "official": "French Republic"},
	"capital": ["Paris"],
	"region": "Europe",
	"subregion": "Western Europe",
	"population": 68000000,
	"languages": {"fra": "French"},
	"currencies": {"EUR": {"name": "Euro", "symbol": "€"}},
	"maps": {"openStreetMaps": "https://www.openstreetmap.org/relation/1403916"}
}]`

func TestCountryClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/France", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("fullText"))
		w.Write([]byte(franceJSON))
	}))
	defer server.Close()

	client := NewCountryClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "France"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "France", items[0].Title)
	assert.Contains(t, items[0].Snippet, "Capital: Paris")
	assert.Equal(t, "French Republic", items[0].Fields["official_name"])
	assert.Equal(t, "French", items[0].Fields["languages"])
	assert.Equal(t, "Euro (EUR)", items[0].Fields["currencies"])
}

func TestCountryClient_FallsBackToPartialMatch(t *testing.T) {
	exactCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fullText") == "true" {
			exactCalls++
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(franceJSON))
	}))
	defer server.Close()

	client := NewCountryClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "Franc"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, exactCalls)
	assert.Equal(t, "France", items[0].Title)
}

func TestCountryClient_NoMatchAtAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewCountryClient(testHTTPClient(), Options{BaseURL: server.URL})
	items, err := client.Fetch(context.Background(), Query{Text: "Atlantis"})

	assert.NoError(t, err)
	assert.Empty(t, items)
}
