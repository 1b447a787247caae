// internal/sources/airquality.go
package sources

import (
	"context"
	"net/url"
	"strconv"

	commonhttp "omnisearch/internal/common/http"
)

const openAQBaseURL = "https://api.openaq.org/v2"

// AirQualityClient reads the latest pollutant measurements for the
// queried city from OpenAQ.
type AirQualityClient struct {
	hc      *commonhttp.Client
	baseURL string
}

func NewAirQualityClient(hc *commonhttp.Client, opts Options) *AirQualityClient {
	c := &AirQualityClient{hc: hc, baseURL: opts.BaseURL}
	if c.baseURL == "" {
		c.baseURL = openAQBaseURL
	}
	return c
}

func (c *AirQualityClient) ID() SourceID { return SourceAirQuality }

func (c *AirQualityClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("city", q.Text)
	params.Set("limit", "1")

	var data struct {
		Results []struct {
			Location     string `json:"location"`
			City         string `json:"city"`
			Country      string `json:"country"`
			Measurements []struct {
				Parameter string  `json:"parameter"`
				Value     float64 `json:"value"`
				Unit      string  `json:"unit"`
			} `json:"measurements"`
		} `json:"results"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/latest?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}
	if len(data.Results) == 0 {
		return nil, nil
	}

	station := data.Results[0]
	snippet := ""
	fields := map[string]string{"station": station.Location, "country": station.Country}
	for i, m := range station.Measurements {
		if i > 0 {
			snippet += ", "
		}
		value := strconv.FormatFloat(m.Value, 'f', -1, 64)
		snippet += m.Parameter + " " + value + " " + m.Unit
		fields[m.Parameter] = value
	}
	if snippet == "" {
		snippet = "No recent measurements"
	}

	title := "Air quality in " + station.City
	if station.City == "" {
		title = "Air quality near " + station.Location
	}
	return []SourceItem{{
		Title:   title,
		Snippet: snippet,
		Fields:  fields,
	}}, nil
}
