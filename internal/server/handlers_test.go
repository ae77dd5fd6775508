package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

type stubPosts struct {
	recent []domain.Post
	bySlot map[string]*domain.Post
	err    error
}

func (s *stubPosts) Create(context.Context, *domain.Post) error { return nil }

func (s *stubPosts) MarkPublished(context.Context, uuid.UUID, time.Time) error { return nil }

func (s *stubPosts) MarkFailed(context.Context, uuid.UUID) error { return nil }

func (s *stubPosts) GetBySlot(_ context.Context, slot string) (*domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	post, ok := s.bySlot[slot]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

func (s *stubPosts) ListRecent(context.Context, int) ([]domain.Post, error) {
	return s.recent, s.err
}

type stubRates struct {
	latest domain.Quote
	err    error
}

func (s *stubRates) Insert(context.Context, domain.Quote) error { return nil }

func (s *stubRates) Latest(context.Context, string) (domain.Quote, error) {
	return s.latest, s.err
}

func (s *stubRates) History(context.Context, string, time.Time) ([]domain.Quote, error) {
	return nil, nil
}

type stubCache struct {
	quote domain.Quote
	found bool
	err   error
}

func (s *stubCache) Set(context.Context, domain.Quote, time.Duration) error { return nil }

func (s *stubCache) Get(context.Context, string) (domain.Quote, bool, error) {
	return s.quote, s.found, s.err
}

// One shared server: the prometheus middleware registers collectors in
// the default registry, which must only happen once per process.
var (
	testPosts = &stubPosts{}
	testRates = &stubRates{}
	testCache = &stubCache{}
	testSrv   = NewServer("0", testPosts, testRates, testCache, "KRW=X", []HealthCheck{
		{Name: "always_ok", Check: func(context.Context) error { return nil }},
	})
)

func resetStubs() {
	*testPosts = stubPosts{}
	*testRates = stubRates{}
	*testCache = stubCache{}
}

func doRequest(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	testSrv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	resetStubs()

	for _, path := range []string{"/healthz/startup", "/healthz/live", "/healthz/ready"} {
		rec := doRequest(t, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestReadiness_FailingCheck(t *testing.T) {
	posts := &stubPosts{}
	srv := &Server{
		posts: posts,
		healthChecks: []HealthCheck{
			{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		},
	}

	// Drive the handler directly; building a second full server would
	// re-register prometheus collectors.
	e := testSrv.echo
	req := httptest.NewRequest(http.MethodGet, "/healthz/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "redis", body["failed_check"])
}

func TestListPosts(t *testing.T) {
	resetStubs()
	testPosts.recent = []domain.Post{
		{Slot: "2026-08-21/morning", Title: "제목", Status: domain.PostStatusPublished},
	}

	rec := doRequest(t, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []domain.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "2026-08-21/morning", posts[0].Slot)
}

func TestListPosts_EmptyIsArray(t *testing.T) {
	resetStubs()

	rec := doRequest(t, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String()[:2])
}

func TestListPosts_InvalidLimit(t *testing.T) {
	resetStubs()

	rec := doRequest(t, "/api/posts?limit=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPost(t *testing.T) {
	resetStubs()
	testPosts.bySlot = map[string]*domain.Post{
		"2026-08-21/morning": {Slot: "2026-08-21/morning", Title: "제목"},
	}

	rec := doRequest(t, "/api/posts/2026-08-21/morning")
	require.Equal(t, http.StatusOK, rec.Code)

	var post domain.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "제목", post.Title)
}

func TestGetPost_NotFound(t *testing.T) {
	resetStubs()

	rec := doRequest(t, "/api/posts/2026-08-21/evening")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQuote_FromCache(t *testing.T) {
	resetStubs()
	testCache.quote = domain.Quote{Ticker: "KRW=X", Close: 1391.25}
	testCache.found = true
	testRates.err = errors.New("db must not be hit")

	rec := doRequest(t, "/api/quote")
	require.Equal(t, http.StatusOK, rec.Code)

	var quote domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 1391.25, quote.Close)
}

func TestGetQuote_FallsBackToDatabase(t *testing.T) {
	resetStubs()
	testCache.err = errors.New("redis down")
	testRates.latest = domain.Quote{Ticker: "KRW=X", Close: 1385.50}

	rec := doRequest(t, "/api/quote")
	require.Equal(t, http.StatusOK, rec.Code)

	var quote domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 1385.50, quote.Close)
}

func TestGetQuote_NoData(t *testing.T) {
	resetStubs()
	testRates.err = domain.ErrNoData

	rec := doRequest(t, "/api/quote")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVersionEndpoint(t *testing.T) {
	resetStubs()

	rec := doRequest(t, "/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}

func TestMetricsEndpoint(t *testing.T) {
	resetStubs()

	rec := doRequest(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
