// internal/sources/types.go
// Package sources defines the uniform contract over the 16 external
// information providers and one concrete client per provider.
package sources

import (
	"strings"
	"time"

	apperrors "omnisearch/internal/common/errors"
)

// SourceID identifies one external information provider.
type SourceID string

const (
	SourceDuckDuckGo    SourceID = "duckduckgo"
	SourceInstantAnswer SourceID = "duckduckgo_instant"
	SourceNews          SourceID = "news"
	SourceWikipedia     SourceID = "wikipedia"
	SourceWikidata      SourceID = "wikidata"
	SourceArxiv         SourceID = "arxiv"
	SourcePubMed        SourceID = "pubmed"
	SourceBooks         SourceID = "books"
	SourceDictionary    SourceID = "dictionary"
	SourceCountry       SourceID = "country"
	SourceQuotes        SourceID = "quotes"
	SourceGitHub        SourceID = "github"
	SourceStackOverflow SourceID = "stackoverflow"
	SourceGeocoding     SourceID = "geocoding"
	SourceWeather       SourceID = "weather"
	SourceAirQuality    SourceID = "air_quality"
)

// All lists every known source in declaration order. Declaration order is
// the canonical invocation order and the default priority order for the
// context builder.
var All = []SourceID{
	SourceDuckDuckGo,
	SourceInstantAnswer,
	SourceNews,
	SourceWikipedia,
	SourceWikidata,
	SourceArxiv,
	SourcePubMed,
	SourceBooks,
	SourceDictionary,
	SourceCountry,
	SourceQuotes,
	SourceGitHub,
	SourceStackOverflow,
	SourceGeocoding,
	SourceWeather,
	SourceAirQuality,
}

// Query is the immutable user query value passed to every source.
type Query struct {
	Text       string `json:"text"`
	MaxResults int    `json:"maxResults,omitempty"` // optional per-request hint; 0 = client default
}

// FirstWord returns the first whitespace-separated token of the query.
// The dictionary source looks up single words only.
func (q Query) FirstWord() string {
	fields := strings.Fields(q.Text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SourceItem is one normalized unit of information from a source. Fields
// carries source-specific structured extras (author, coordinates,
// temperature, stars, ...).
type SourceItem struct {
	Title   string            `json:"title"`
	Snippet string            `json:"snippet"`
	URL     string            `json:"url,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Status is the terminal state of one source fetch.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailure  Status = "failure"
	StatusTimedOut Status = "timed_out"
)

// SourceResult is the immutable outcome of one source fetch for one query.
// Exactly one exists per (query, source) pair per invocation.
type SourceResult struct {
	Status       Status         `json:"status"`
	Items        []SourceItem   `json:"items,omitempty"`
	Elapsed      time.Duration  `json:"elapsedMs"`
	ErrorKind    apperrors.Code `json:"errorKind,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// OK reports whether the fetch produced usable items.
func (r SourceResult) OK() bool {
	return r.Status == StatusSuccess
}
