// internal/sources/pubmed.go
package sources

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "omnisearch/internal/common/errors"
	commonhttp "omnisearch/internal/common/http"
)

const pubmedBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const pubmedAbstractLimit = 500

// PubMedClient searches PubMed in the NCBI two-phase style: esearch for
// article IDs, then efetch for abstracts.
type PubMedClient struct {
	hc         *commonhttp.Client
	baseURL    string
	maxResults int
}

func NewPubMedClient(hc *commonhttp.Client, opts Options) *PubMedClient {
	c := &PubMedClient{hc: hc, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
	if c.baseURL == "" {
		c.baseURL = pubmedBaseURL
	}
	if c.maxResults == 0 {
		c.maxResults = 3
	}
	return c
}

func (c *PubMedClient) ID() SourceID { return SourcePubMed }

type pubmedArticleSet struct {
	Articles []struct {
		PMID    string `xml:"MedlineCitation>PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Text []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			Authors []struct {
				LastName string `xml:"LastName"`
				ForeName string `xml:"ForeName"`
			} `xml:"AuthorList>Author"`
		} `xml:"MedlineCitation>Article"`
	} `xml:"PubmedArticle"`
}

func (c *PubMedClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	ids, err := c.searchIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.fetchArticles(ctx, ids)
}

func (c *PubMedClient) searchIDs(ctx context.Context, q Query) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", q.Text)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(resultCount(q, c.maxResults)))
	params.Set("sort", "relevance")

	var data struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := getJSON(ctx, c.hc, c.baseURL+"/esearch.fcgi?"+params.Encode(), nil, &data); err != nil {
		return nil, err
	}
	return data.ESearchResult.IDList, nil
}

func (c *PubMedClient) fetchArticles(ctx context.Context, ids []string) ([]SourceItem, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")

	resp, err := getRaw(ctx, c.hc, c.baseURL+"/efetch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewBadStatusError(resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, apperrors.NewParseFailureError(err)
	}

	items := make([]SourceItem, 0, len(set.Articles))
	for _, art := range set.Articles {
		abstract := strings.Join(art.Article.Abstract.Text, " ")
		if abstract == "" {
			abstract = "No abstract available"
		}
		if len(abstract) > pubmedAbstractLimit {
			abstract = abstract[:pubmedAbstractLimit] + "..."
		}

		authors := make([]string, 0, len(art.Article.Authors))
		for _, a := range art.Article.Authors {
			if len(authors) >= 5 {
				break
			}
			switch {
			case a.ForeName != "" && a.LastName != "":
				authors = append(authors, a.ForeName+" "+a.LastName)
			case a.LastName != "":
				authors = append(authors, a.LastName)
			}
		}

		itemURL := ""
		if art.PMID != "" {
			itemURL = "https://pubmed.ncbi.nlm.nih.gov/" + art.PMID + "/"
		}
		items = append(items, SourceItem{
			Title:   art.Article.Title,
			Snippet: abstract,
			URL:     itemURL,
			Fields: map[string]string{
				"authors": strings.Join(authors, ", "),
				"pmid":    art.PMID,
			},
		})
	}
	return items, nil
}
