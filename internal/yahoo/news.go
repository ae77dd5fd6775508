package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
)

const (
	defaultNewsURL = "https://finance.yahoo.com/news"

	// The landing page leads with its biggest stories, so the first few
	// headlines are taken as-is.
	newsItemCount = 3
)

// NewsCollector scrapes top headlines from the Yahoo Finance news page.
type NewsCollector struct {
	url  string
	http *http.Client
}

// NewsOption customizes a NewsCollector.
type NewsOption func(*NewsCollector)

// WithNewsURL points the collector at a different page (tests).
func WithNewsURL(u string) NewsOption {
	return func(c *NewsCollector) { c.url = u }
}

// NewNewsCollector creates a collector for the Yahoo Finance news page.
func NewNewsCollector(opts ...NewsOption) *NewsCollector {
	c := &NewsCollector{
		url:  defaultNewsURL,
		http: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// News fetches the page and returns the leading headlines, all marked
// high importance.
func (c *NewsCollector) News(ctx context.Context) ([]domain.NewsItem, error) {
	start := time.Now()
	items, err := c.fetch(ctx)
	metrics.CollectorFetchDuration.WithLabelValues("yahoo_news").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFetchesTotal.WithLabelValues("yahoo_news", "error").Inc()
		return nil, err
	}
	metrics.CollectorFetchesTotal.WithLabelValues("yahoo_news", "success").Inc()
	metrics.NewsItemsCollected.WithLabelValues("yahoo_finance").Add(float64(len(items)))
	return items, nil
}

func (c *NewsCollector) fetch(ctx context.Context) ([]domain.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch yahoo finance news: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo finance news returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to parse yahoo finance news page: %w", err)
	}

	now := time.Now()
	var items []domain.NewsItem
	seen := make(map[string]bool)
	walkHeadlines(doc, func(title, link string) bool {
		if title == "" || seen[title] {
			return len(items) < newsItemCount
		}
		seen[title] = true
		if link != "" && strings.HasPrefix(link, "/") {
			link = "https://finance.yahoo.com" + link
		}
		items = append(items, domain.NewsItem{
			Title:      title,
			Link:       link,
			Source:     "Yahoo Finance",
			At:         now,
			Importance: domain.ImportanceHigh,
		})
		return len(items) < newsItemCount
	})
	return items, nil
}

// walkHeadlines visits each h3 headline in document order, reporting its
// text and nearest link. The visitor returns false to stop the walk.
func walkHeadlines(root *html.Node, visit func(title, link string) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "h3" {
			return visit(headlineText(n), headlineLink(n))
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if !walk(child) {
				return false
			}
		}
		return true
	}
	walk(root)
}

func headlineText(h3 *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(h3)
	return strings.TrimSpace(sb.String())
}

// headlineLink finds the href on the h3's enclosing or enclosed anchor.
func headlineLink(h3 *html.Node) string {
	for p := h3.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "a" {
			return attrValue(p, "href")
		}
	}

	var link string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if link != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			link = attrValue(n, "href")
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(h3)
	return link
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
