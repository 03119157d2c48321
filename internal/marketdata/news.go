package marketdata

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// GoogleNewsBaseURL is the Google News RSS endpoint.
const GoogleNewsBaseURL = "https://news.google.com"

const defaultMaxArticles = 10

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Source      struct {
		Text string `xml:",chardata"`
	} `xml:"source"`
}

// NewsClient fetches headlines from the Google News RSS feed.
type NewsClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewsOption configures the NewsClient.
type NewsOption func(*NewsClient)

// WithNewsBaseURL sets a custom base URL.
func WithNewsBaseURL(baseURL string) NewsOption {
	return func(c *NewsClient) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithNewsTimeout sets a custom per-request HTTP timeout.
func WithNewsTimeout(timeout time.Duration) NewsOption {
	return func(c *NewsClient) {
		c.client.SetTimeout(timeout)
	}
}

// NewNewsClient creates a new Google News client.
func NewNewsClient(logger arbor.ILogger, opts ...NewsOption) *NewsClient {
	client := resty.New().
		SetBaseURL(GoogleNewsBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	c := &NewsClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search returns up to maxResults recent headlines for a query.
func (c *NewsClient) Search(ctx context.Context, query string, maxResults int) ([]NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxArticles
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":  query,
			"hl": "en-US",
			"gl": "US",
		}).
		Get("/rss/search")
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("news feed returned status %d", resp.StatusCode())
	}

	articles, err := parseRSS(resp.Body(), maxResults)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("articles", len(articles)).
		Msg("News headlines fetched")

	return articles, nil
}

// SearchAsset returns recent headlines for an asset symbol.
func (c *NewsClient) SearchAsset(ctx context.Context, symbol string, maxResults int) ([]NewsArticle, error) {
	return c.Search(ctx, symbol+" market outlook", maxResults)
}

// parseRSS converts an RSS payload into articles, stripping HTML from the
// description snippets.
func parseRSS(body []byte, maxResults int) ([]NewsArticle, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	articles := make([]NewsArticle, 0, maxResults)
	for _, item := range feed.Channel.Items {
		if len(articles) >= maxResults {
			break
		}
		if strings.TrimSpace(item.Title) == "" || item.Link == "" {
			continue
		}

		article := NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Source:  strings.TrimSpace(item.Source.Text),
			Snippet: stripHTML(item.Description),
		}
		if published, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
			article.PublishedAt = published.UTC()
		} else if published, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			article.PublishedAt = published.UTC()
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// stripHTML extracts the plain text of an HTML snippet.
func stripHTML(snippet string) string {
	if snippet == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return strings.TrimSpace(snippet)
	}
	return strings.TrimSpace(doc.Text())
}
