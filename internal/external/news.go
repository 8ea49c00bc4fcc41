package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"quill/internal/observability"
)

// Article is one news headline shown on the landing page.
type Article struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"`
}

// NewsClient fetches top headlines for a fixed country from a
// NewsAPI-compatible provider.
type NewsClient struct {
	baseURL  string
	apiKey   string
	country  string
	pageSize int
	client   *http.Client
}

// NewNewsClient creates a NewsClient. pageSize defaults to 10 when zero.
func NewNewsClient(baseURL, apiKey, country string, pageSize int, client *http.Client) *NewsClient {
	if pageSize <= 0 {
		pageSize = 10
	}
	if country == "" {
		country = "us"
	}
	return &NewsClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		country:  country,
		pageSize: pageSize,
		client:   client,
	}
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// TopHeadlines returns the provider's current top headlines.
func (c *NewsClient) TopHeadlines(ctx context.Context) ([]Article, error) {
	start := time.Now()

	ctx, span := observability.StartProviderSpan(ctx, "news", "top_headlines")
	defer span.End()

	q := url.Values{}
	q.Set("country", c.country)
	q.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
	q.Set("apiKey", c.apiKey)

	var resp newsResponse
	err := getJSON(ctx, c.client, c.baseURL+"/top-headlines?"+q.Encode(), &resp)
	observability.ObserveExternalFetch("news", start, err)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}
	if resp.Status != "ok" {
		err := fmt.Errorf("news provider returned status %q", resp.Status)
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	articles := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, Article{
			Source:      a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
