// internal/sources/weather.go
package sources

import (
	"context"
	"net/url"

	commonhttp "omnisearch/internal/common/http"
)

const wttrBaseURL = "https://wttr.in"

// WeatherClient reads current conditions from wttr.in for the queried
// location.
type WeatherClient struct {
	hc      *commonhttp.Client
	baseURL string
}

func NewWeatherClient(hc *commonhttp.Client, opts Options) *WeatherClient {
	c := &WeatherClient{hc: hc, baseURL: opts.BaseURL}
	if c.baseURL == "" {
		c.baseURL = wttrBaseURL
	}
	return c
}

func (c *WeatherClient) ID() SourceID { return SourceWeather }

func (c *WeatherClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	var data struct {
		CurrentCondition []struct {
			TempC       string `json:"temp_C"`
			FeelsLikeC  string `json:"FeelsLikeC"`
			Humidity    string `json:"humidity"`
			WindSpeed   string `json:"windspeedKmph"`
			WeatherDesc []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"current_condition"`
		NearestArea []struct {
			AreaName []struct {
				Value string `json:"value"`
			} `json:"areaName"`
			Country []struct {
				Value string `json:"value"`
			} `json:"country"`
		} `json:"nearest_area"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/"+url.PathEscape(q.Text)+"?format=j1", nil, &data); err != nil {
		return nil, err
	}
	if len(data.CurrentCondition) == 0 {
		return nil, nil
	}

	cond := data.CurrentCondition[0]
	desc := ""
	if len(cond.WeatherDesc) > 0 {
		desc = cond.WeatherDesc[0].Value
	}

	location := q.Text
	if len(data.NearestArea) > 0 {
		area := data.NearestArea[0]
		if len(area.AreaName) > 0 {
			location = area.AreaName[0].Value
			if len(area.Country) > 0 {
				location += ", " + area.Country[0].Value
			}
		}
	}

	snippet := desc + ", " + cond.TempC + "C (feels like " + cond.FeelsLikeC + "C), humidity " +
		cond.Humidity + "%, wind " + cond.WindSpeed + " km/h"

	return []SourceItem{{
		Title:   "Weather in " + location,
		Snippet: snippet,
		Fields: map[string]string{
			"temp_c":   cond.TempC,
			"humidity": cond.Humidity,
			"wind":     cond.WindSpeed,
		},
	}}, nil
}
