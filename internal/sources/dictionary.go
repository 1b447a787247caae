// internal/sources/dictionary.go
package sources

import (
	"context"
	"net/http"
	"net/url"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

const dictionaryBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

const dictionaryDefinitionLimit = 3

// DictionaryClient looks up the first word of the query in the free
// dictionary API. A 404 means the word has no entry, which is not an
// error from the caller's perspective.
type DictionaryClient struct {
	hc      *commonhttp.Client
	baseURL string
}

func NewDictionaryClient(hc *commonhttp.Client, opts Options) *DictionaryClient {
	c := &DictionaryClient{hc: hc, baseURL: opts.BaseURL}
	if c.baseURL == "" {
		c.baseURL = dictionaryBaseURL
	}
	return c
}

func (c *DictionaryClient) ID() SourceID { return SourceDictionary }

func (c *DictionaryClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	word := q.FirstWord()
	if word == "" {
		return nil, nil
	}

	resp, err := getRaw(ctx, c.hc, c.baseURL+"/"+url.PathEscape(word), nil)
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

	var entries []struct {
		Word     string `json:"word"`
		Phonetic string `json:"phonetic"`
		Meanings []struct {
			PartOfSpeech string `json:"partOfSpeech"`
			Definitions  []struct {
				Definition string `json:"definition"`
				Example    string `json:"example"`
			} `json:"definitions"`
		} `json:"meanings"`
	}
	if err := decodeJSONBody(resp, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	entry := entries[0]
	var items []SourceItem
	for _, m := range entry.Meanings {
		for _, d := range m.Definitions {
			if len(items) >= dictionaryDefinitionLimit {
				return items, nil
			}
			fields := map[string]string{"part_of_speech": m.PartOfSpeech}
			if entry.Phonetic != "" {
				fields["phonetic"] = entry.Phonetic
			}
			if d.Example != "" {
				fields["example"] = d.Example
			}
			items = append(items, SourceItem{
				Title:   entry.Word + " (" + m.PartOfSpeech + ")",
				Snippet: d.Definition,
				Fields:  fields,
			})
		}
	}
	return items, nil
}
