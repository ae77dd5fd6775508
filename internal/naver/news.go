package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
)

const (
	financeBaseURL = "https://finance.naver.com"
	newsUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// Items beyond this count per fetch get keyword-scored instead of the
	// source's default high importance.
	topItemCount = 3
	maxItems     = 6
)

// Importance keyword sets. A title containing a high keyword outranks one
// that only matches medium, regardless of source order.
var (
	highKeywords   = []string{"tariff", "trade", "fed", "interest rate", "inflation", "economy", "market", "exchange rate", "usd/krw", "환율", "금리", "관세"}
	mediumKeywords = []string{"earnings", "stock", "company", "industry", "export", "import", "수출", "수입", "실적"}
)

// NewsCollector scrapes exchange-rate headlines from the configured Naver
// Finance page.
type NewsCollector struct {
	url  string
	http *http.Client
}

// NewNewsCollector creates a collector for the given exchange-rate news URL.
func NewNewsCollector(url string) *NewsCollector {
	return &NewsCollector{
		url:  url,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// News fetches and parses the headline list. The page is EUC-KR encoded.
func (c *NewsCollector) News(ctx context.Context) ([]domain.NewsItem, error) {
	start := time.Now()
	items, err := c.fetch(ctx)
	metrics.CollectorFetchDuration.WithLabelValues("naver_news").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFetchesTotal.WithLabelValues("naver_news", "error").Inc()
		return nil, err
	}
	metrics.CollectorFetchesTotal.WithLabelValues("naver_news", "success").Inc()
	metrics.NewsItemsCollected.WithLabelValues("naver_finance").Add(float64(len(items)))
	return items, nil
}

func (c *NewsCollector) fetch(ctx context.Context) ([]domain.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", newsUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch naver finance news: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver finance news returned status %d", resp.StatusCode)
	}

	decoded := transform.NewReader(io.LimitReader(resp.Body, 4<<20), korean.EUCKR.NewDecoder())
	doc, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse naver finance news page: %w", err)
	}

	now := time.Now()
	var items []domain.NewsItem
	for _, li := range newsListEntries(doc) {
		if len(items) >= maxItems {
			break
		}

		title, link := entryTitleLink(li)
		if title == "" {
			continue
		}
		if link != "" && !strings.HasPrefix(link, "http") {
			link = financeBaseURL + link
		}

		importance := domain.ImportanceHigh
		if len(items) >= topItemCount {
			importance = ScoreImportance(title)
		}

		items = append(items, domain.NewsItem{
			Title:      title,
			Summary:    entrySummary(li),
			Link:       link,
			Source:     "네이버 금융",
			At:         now,
			Importance: importance,
		})
	}

	domain.SortNewsByImportance(items)
	return items, nil
}

// ScoreImportance ranks a headline by keyword match.
func ScoreImportance(title string) domain.Importance {
	lower := strings.ToLower(title)
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return domain.ImportanceHigh
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			return domain.ImportanceMedium
		}
	}
	return domain.ImportanceLow
}

// newsListEntries finds the li nodes of the section_news list.
func newsListEntries(doc *html.Node) []*html.Node {
	section := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "section_news")
	})
	if section == nil {
		return nil
	}

	ul := findNode(section, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "ul"
	})
	if ul == nil {
		return nil
	}

	var entries []*html.Node
	for child := ul.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "li" {
			entries = append(entries, child)
		}
	}
	return entries
}

// entryTitleLink extracts the dt > a title text and href of one entry.
func entryTitleLink(li *html.Node) (title, link string) {
	dt := findNode(li, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "dt"
	})
	if dt == nil {
		return "", ""
	}

	a := findNode(dt, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a"
	})
	if a == nil {
		return "", ""
	}

	for _, attr := range a.Attr {
		if attr.Key == "href" {
			link = attr.Val
		}
	}
	return strings.TrimSpace(nodeText(a)), link
}

// entrySummary extracts the dd text of one entry.
func entrySummary(li *html.Node) string {
	dd := findNode(li, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "dd"
	})
	if dd == nil {
		return ""
	}
	return strings.TrimSpace(nodeText(dd))
}

func findNode(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, match); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
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
	walk(n)
	return sb.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}
