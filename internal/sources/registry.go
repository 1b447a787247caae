// internal/sources/registry.go
package sources

import (
	"fmt"
	"strings"

	commonhttp "omnisearch/internal/common/http"
)

// ParseIDs validates a comma-separated list of source names against the
// known set, preserving order and dropping duplicates. An empty list
// selects every source.
func ParseIDs(raw string) ([]SourceID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		ids := make([]SourceID, len(All))
		copy(ids, All)
		return ids, nil
	}

	known := make(map[SourceID]bool, len(All))
	for _, id := range All {
		known[id] = true
	}

	seen := make(map[SourceID]bool)
	var ids []SourceID
	for _, part := range strings.Split(raw, ",") {
		id := SourceID(strings.TrimSpace(part))
		if id == "" {
			continue
		}
		if !known[id] {
			return nil, fmt.Errorf("unknown source %q", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no sources selected")
	}
	return ids, nil
}

// BuildClients constructs one client per requested source, all sharing
// the same HTTP transport.
func BuildClients(ids []SourceID, hc *commonhttp.Client, maxResults int) ([]Client, error) {
	opts := Options{MaxResults: maxResults}
	clients := make([]Client, 0, len(ids))
	for _, id := range ids {
		switch id {
		case SourceDuckDuckGo:
			clients = append(clients, NewWebSearchClient(hc, opts))
		case SourceInstantAnswer:
			clients = append(clients, NewInstantAnswerClient(hc, opts))
		case SourceNews:
			clients = append(clients, NewNewsClient(hc, opts, NewWebSearchClient(hc, opts)))
		case SourceWikipedia:
			clients = append(clients, NewWikipediaClient(hc, opts))
		case SourceWikidata:
			clients = append(clients, NewWikidataClient(hc, opts))
		case SourceArxiv:
			clients = append(clients, NewArxivClient(hc, opts))
		case SourcePubMed:
			clients = append(clients, NewPubMedClient(hc, opts))
		case SourceBooks:
			clients = append(clients, NewBooksClient(hc, opts))
		case SourceDictionary:
			clients = append(clients, NewDictionaryClient(hc, opts))
		case SourceCountry:
			clients = append(clients, NewCountryClient(hc, opts))
		case SourceQuotes:
			clients = append(clients, NewQuotesClient(hc, opts))
		case SourceGitHub:
			clients = append(clients, NewGitHubClient(hc, opts))
		case SourceStackOverflow:
			clients = append(clients, NewStackOverflowClient(hc, opts))
		case SourceGeocoding:
			clients = append(clients, NewGeocodingClient(hc, opts))
		case SourceWeather:
			clients = append(clients, NewWeatherClient(hc, opts))
		case SourceAirQuality:
			clients = append(clients, NewAirQualityClient(hc, opts))
		default:
			return nil, fmt.Errorf("unknown source %q", id)
		}
	}
	return clients, nil
}
