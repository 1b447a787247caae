// internal/sources/nominatim.go
package sources

import (
	"context"
	"net/url"

	commonhttp "omnisearch/internal/common/http"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// GeocodingClient resolves the query as a place name through Nominatim.
// Only the best match is returned; Nominatim's usage policy discourages
// bulk lookups.
type GeocodingClient struct {
	hc      *commonhttp.Client
	baseURL string
}

func NewGeocodingClient(hc *commonhttp.Client, opts Options) *GeocodingClient {
	c := &GeocodingClient{hc: hc, baseURL: opts.BaseURL}
	if c.baseURL == "" {
		c.baseURL = nominatimBaseURL
	}
	return c
}

func (c *GeocodingClient) ID() SourceID { return SourceGeocoding }

func (c *GeocodingClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("limit", "1")

	var places []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		Type        string `json:"type"`
		Class       string `json:"class"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/search?"+params.Encode(), nil, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, nil
	}

	place := places[0]
	return []SourceItem{{
		Title:   place.DisplayName,
		Snippet: "Coordinates: " + place.Lat + ", " + place.Lon,
		URL:     "https://www.openstreetmap.org/search?query=" + url.QueryEscape(q.Text),
		Fields: map[string]string{
			"lat":  place.Lat,
			"lon":  place.Lon,
			"type": place.Class + "/" + place.Type,
		},
	}}, nil
}
