package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/retry"
)

var fastPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   time.Millisecond,
	RateLimitBackoff: time.Millisecond,
}

type fakeNaver struct {
	srv        *httptest.Server
	logins     atomic.Int32
	posts      atomic.Int32
	lastForm   atomic.Value
	denyLogin  bool
	failPosts  int32
	expireOnce bool
	postsSeen  atomic.Int32
}

func newFakeNaver(t *testing.T) *fakeNaver {
	t.Helper()
	f := &fakeNaver{}
	mux := http.NewServeMux()
	mux.HandleFunc("/nidlogin.login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		require.NoError(t, r.ParseForm())
		if f.denyLogin || r.PostForm.Get("pw") != "secret" {
			// 200 without a session cookie means bad credentials.
			w.WriteHeader(http.StatusOK)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "session-token"})
	})
	mux.HandleFunc("/RabbitWrite.naver", func(w http.ResponseWriter, r *http.Request) {
		seen := f.postsSeen.Add(1)
		if f.expireOnce && seen == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if seen <= f.failPosts {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		require.NoError(t, r.ParseForm())
		f.lastForm.Store(r.PostForm)
		f.posts.Add(1)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestPublisher(t *testing.T, f *fakeNaver, password string) *Publisher {
	t.Helper()
	p, err := NewPublisher("gongnyangi", password, "gongnyangi", "출퇴근 환율분석",
		WithEndpoints(f.srv.URL+"/nidlogin.login", f.srv.URL),
		WithPublishPolicy(fastPolicy))
	require.NoError(t, err)
	return p
}

func TestPublish_LoginThenPost(t *testing.T) {
	f := newFakeNaver(t)
	p := newTestPublisher(t, f, "secret")

	err := p.Publish(context.Background(), "제목", "<p>본문</p>", []string{"환율", "달러환율"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.logins.Load())
	assert.Equal(t, int32(1), f.posts.Load())

	form := f.lastForm.Load().(url.Values)
	assert.Equal(t, "gongnyangi", form["blogId"][0])
	assert.Equal(t, "제목", form["title"][0])
	assert.Equal(t, "출퇴근 환율분석", form["categoryName"][0])
	assert.Equal(t, "환율,달러환율", form["tagList"][0])
}

func TestPublish_ReusesSession(t *testing.T) {
	f := newFakeNaver(t)
	p := newTestPublisher(t, f, "secret")

	require.NoError(t, p.Publish(context.Background(), "a", "b", nil))
	require.NoError(t, p.Publish(context.Background(), "c", "d", nil))

	assert.Equal(t, int32(1), f.logins.Load())
	assert.Equal(t, int32(2), f.posts.Load())
}

func TestPublish_BadCredentialsArePermanent(t *testing.T) {
	f := newFakeNaver(t)
	p := newTestPublisher(t, f, "wrong")

	err := p.Publish(context.Background(), "a", "b", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoginFailed)
	assert.Equal(t, int32(1), f.logins.Load())
}

func TestPublish_RetriesServerErrors(t *testing.T) {
	f := newFakeNaver(t)
	f.failPosts = 2
	p := newTestPublisher(t, f, "secret")

	err := p.Publish(context.Background(), "a", "b", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.postsSeen.Load())
	assert.Equal(t, int32(1), f.posts.Load())
}

func TestPublish_ReloginsAfterSessionExpiry(t *testing.T) {
	f := newFakeNaver(t)
	f.expireOnce = true
	p := newTestPublisher(t, f, "secret")

	// First write bounces with 401; the retry must log in again and succeed.
	err := p.Publish(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.logins.Load())
	assert.Equal(t, int32(2), f.postsSeen.Load())
	assert.Equal(t, int32(1), f.posts.Load())
}

func TestNewPublisher_RequiresCredentials(t *testing.T) {
	_, err := NewPublisher("", "", "blog", "cat")
	assert.Error(t, err)
}

func TestBlogIDFromURL(t *testing.T) {
	assert.Equal(t, "gongnyangi", BlogIDFromURL("blog.naver.com/gongnyangi"))
	assert.Equal(t, "gongnyangi", BlogIDFromURL("https://blog.naver.com/gongnyangi/"))
	assert.Equal(t, "solo", BlogIDFromURL("solo"))
}
