package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

const yahooNewsPage = `<html><body>
<div id="main">
<ul>
<li><a href="/news/dollar-rallies-123.html"><h3>Dollar rallies as Fed holds rates</h3></a></li>
<li><a href="/news/asia-markets-456.html"><h3>Asian markets slip on trade worries</h3></a></li>
<li><h3><a href="https://finance.yahoo.com/news/oil-789.html">Oil steadies after volatile week</a></h3></li>
<li><a href="/news/extra-000.html"><h3>Fourth headline never makes the cut</h3></a></li>
</ul>
</div>
</body></html>`

func yahooNewsServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooNews_ParsesTopHeadlines(t *testing.T) {
	srv := yahooNewsServer(t, yahooNewsPage)
	collector := NewNewsCollector(WithNewsURL(srv.URL))

	items, err := collector.News(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Dollar rallies as Fed holds rates", items[0].Title)
	assert.Equal(t, "https://finance.yahoo.com/news/dollar-rallies-123.html", items[0].Link)
	assert.Equal(t, "Yahoo Finance", items[0].Source)
	assert.Equal(t, "https://finance.yahoo.com/news/oil-789.html", items[2].Link)

	for _, item := range items {
		assert.Equal(t, domain.ImportanceHigh, item.Importance, item.Title)
	}
}

func TestYahooNews_SkipsDuplicateTitles(t *testing.T) {
	page := `<html><body>
<a href="/news/a.html"><h3>Same story</h3></a>
<a href="/news/b.html"><h3>Same story</h3></a>
<a href="/news/c.html"><h3>Different story</h3></a>
</body></html>`
	srv := yahooNewsServer(t, page)
	collector := NewNewsCollector(WithNewsURL(srv.URL))

	items, err := collector.News(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Same story", items[0].Title)
	assert.Equal(t, "Different story", items[1].Title)
}

func TestYahooNews_EmptyPage(t *testing.T) {
	srv := yahooNewsServer(t, `<html><body><p>nothing here</p></body></html>`)
	collector := NewNewsCollector(WithNewsURL(srv.URL))

	items, err := collector.News(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestYahooNews_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := NewNewsCollector(WithNewsURL(srv.URL)).News(context.Background())
	assert.Error(t, err)
}
