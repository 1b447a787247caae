// internal/sources/countries.go
package sources

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

const restCountriesBaseURL = "https://restcountries.com/v3.1"

// CountryClient resolves the query as a country name. An exact-name
// lookup that misses is retried as a partial match before giving up.
type CountryClient struct {
	hc      *commonhttp.Client
	baseURL string
}

func NewCountryClient(hc *commonhttp.Client, opts Options) *CountryClient {
	c := &CountryClient{hc: hc, baseURL: opts.BaseURL}
	if c.baseURL == "" {
		c.baseURL = restCountriesBaseURL
	}
	return c
}

func (c *CountryClient) ID() SourceID { return SourceCountry }

type restCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital    []string          `json:"capital"`
	Region     string            `json:"region"`
	Subregion  string            `json:"subregion"`
	Population int64             `json:"population"`
	Languages  map[string]string `json:"languages"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Maps struct {
		OpenStreetMaps string `json:"openStreetMaps"`
	} `json:"maps"`
}

func (c *CountryClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	countries, err := c.lookup(ctx, q.Text, true)
	if err != nil {
		return nil, err
	}
	if countries == nil {
		countries, err = c.lookup(ctx, q.Text, false)
		if err != nil {
			return nil, err
		}
	}
	if len(countries) == 0 {
		return nil, nil
	}

	country := countries[0]
	capital := strings.Join(country.Capital, ", ")
	if capital == "" {
		capital = "n/a"
	}

	langs := make([]string, 0, len(country.Languages))
	for _, l := range country.Languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	currencies := make([]string, 0, len(country.Currencies))
	for code, cur := range country.Currencies {
		currencies = append(currencies, cur.Name+" ("+code+")")
	}
	sort.Strings(currencies)

	snippet := "Capital: " + capital + ". Region: " + country.Region
	if country.Subregion != "" {
		snippet += " (" + country.Subregion + ")"
	}
	snippet += ". Population: " + strconv.FormatInt(country.Population, 10) + "."

	return []SourceItem{{
		Title:   country.Name.Common,
		Snippet: snippet,
		URL:     country.Maps.OpenStreetMaps,
		Fields: map[string]string{
			"official_name": country.Name.Official,
			"capital":       capital,
			"region":        country.Region,
			"population":    strconv.FormatInt(country.Population, 10),
			"languages":     strings.Join(langs, ", "),
			"currencies":    strings.Join(currencies, ", "),
		},
	}}, nil
}

// lookup returns a nil slice on 404 so the caller can fall back to a
// partial-name match.
func (c *CountryClient) lookup(ctx context.Context, name string, exact bool) ([]restCountry, error) {
	reqURL := c.baseURL + "/name/" + url.PathEscape(name)
	if exact {
		reqURL += "?fullText=true"
	}

	resp, err := getRaw(ctx, c.hc, reqURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewBadStatusError(resp.StatusCode)
	}

	var countries []restCountry
	if err := decodeJSONBody(resp, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}
