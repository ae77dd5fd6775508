package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

const newsPage = `<html><body>
<div id="content">
<div class="section_news _replaceNewsLink">
<ul>
<li><dl><dt><a href="/news/news_read.naver?article_id=1">원/달러 환율, 1390원대 마감</a></dt><dd>달러 강세에 환율이 상승 마감했다.</dd></dl></li>
<li><dl><dt><a href="/news/news_read.naver?article_id=2">美 연준 금리 동결 전망</a></dt><dd>시장은 금리 동결을 예상한다.</dd></dl></li>
<li><dl><dt><a href="/news/news_read.naver?article_id=3">외환보유액 소폭 감소</a></dt><dd>외환보유액이 줄었다.</dd></dl></li>
<li><dl><dt><a href="/news/news_read.naver?article_id=4">수출 기업 실적 발표</a></dt><dd>주요 수출 기업이 실적을 냈다.</dd></dl></li>
<li><dl><dt><a href="/news/news_read.naver?article_id=5">날씨 소식</a></dt><dd>주말 날씨 전망.</dd></dl></li>
</ul>
</div>
</div>
</body></html>`

func encodeEUCKR(t *testing.T, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return out
}

func newsServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=EUC-KR")
		_, _ = w.Write(encodeEUCKR(t, page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNews_ParsesEUCKRHeadlines(t *testing.T) {
	srv := newsServer(t, newsPage)
	collector := NewNewsCollector(srv.URL)

	items, err := collector.News(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5)

	assert.Equal(t, "원/달러 환율, 1390원대 마감", items[0].Title)
	assert.Equal(t, "달러 강세에 환율이 상승 마감했다.", items[0].Summary)
	assert.Equal(t, financeBaseURL+"/news/news_read.naver?article_id=1", items[0].Link)
	assert.Equal(t, "네이버 금융", items[0].Source)
}

func TestNews_TopThreeAreHighThenKeywordScored(t *testing.T) {
	srv := newsServer(t, newsPage)
	collector := NewNewsCollector(srv.URL)

	items, err := collector.News(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5)

	for _, item := range items[:3] {
		assert.Equal(t, domain.ImportanceHigh, item.Importance, item.Title)
	}
	// "수출 기업 실적 발표" matches a medium keyword, the weather headline none.
	assert.Equal(t, domain.ImportanceMedium, items[3].Importance)
	assert.Equal(t, "수출 기업 실적 발표", items[3].Title)
	assert.Equal(t, domain.ImportanceLow, items[4].Importance)
}

func TestNews_EmptyPage(t *testing.T) {
	srv := newsServer(t, `<html><body><div id="content"></div></body></html>`)
	collector := NewNewsCollector(srv.URL)

	items, err := collector.News(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNews_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewNewsCollector(srv.URL).News(context.Background())
	assert.Error(t, err)
}

func TestScoreImportance(t *testing.T) {
	tests := []struct {
		title string
		want  domain.Importance
	}{
		{"Fed signals rate cut as inflation cools", domain.ImportanceHigh},
		{"환율 급등에 수입 물가 비상", domain.ImportanceHigh},
		{"Samsung earnings beat expectations", domain.ImportanceMedium},
		{"Local festival draws record crowd", domain.ImportanceLow},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ScoreImportance(tc.title), tc.title)
	}
}
