package naver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/retry"
)

const (
	defaultLoginURL = "https://nid.naver.com/nidlogin.login"
	defaultBlogAPI  = "https://blog.naver.com"

	sessionCookie = "NID_AUT"
)

var publishPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   2 * time.Second,
	RateLimitBackoff: 30 * time.Second,
}

// Publisher posts to a Naver blog over an authenticated HTTP session.
type Publisher struct {
	username string
	password string
	blogID   string
	category string

	loginURL string
	blogURL  string
	http     *http.Client
	policy   retry.Policy

	mu       sync.Mutex
	loggedIn bool
}

// PublisherOption customizes a Publisher.
type PublisherOption func(*Publisher)

// WithEndpoints points the publisher at different hosts (tests).
func WithEndpoints(loginURL, blogURL string) PublisherOption {
	return func(p *Publisher) {
		p.loginURL = loginURL
		p.blogURL = blogURL
	}
}

// WithPublishPolicy overrides the retry policy (tests).
func WithPublishPolicy(policy retry.Policy) PublisherOption {
	return func(p *Publisher) { p.policy = policy }
}

// NewPublisher creates a blog publisher. blogID is the blog's URL slug
// (the last segment of blog.naver.com/<blogID>), category the target
// category name on the blog.
func NewPublisher(username, password, blogID, category string, opts ...PublisherOption) (*Publisher, error) {
	if username == "" || password == "" {
		return nil, errors.New("naver credentials are required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		username: username,
		password: password,
		blogID:   blogID,
		category: category,
		loginURL: defaultLoginURL,
		blogURL:  defaultBlogAPI,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		policy: publishPolicy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BlogIDFromURL extracts the blog slug from a blog URL like
// "blog.naver.com/gongnyangi".
func BlogIDFromURL(blogURL string) string {
	trimmed := strings.TrimSuffix(blogURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// Publish posts the given article. Login is established lazily on the
// first call and reused for the session; an invalid-credentials failure
// is permanent and never retried.
func (p *Publisher) Publish(ctx context.Context, title, content string, tags []string) error {
	return retry.DoVoid(ctx, p.policy, classifyPublish, func() error {
		if err := p.ensureLogin(ctx); err != nil {
			return err
		}
		return p.post(ctx, title, content, tags)
	})
}

func classifyPublish(err error) retry.Action {
	if errors.Is(err, domain.ErrLoginFailed) {
		return retry.Stop
	}
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.code == http.StatusTooManyRequests:
			return retry.After
		case se.code == http.StatusUnauthorized || se.code == http.StatusForbidden:
			// Expired session; the retry runs ensureLogin again.
			return retry.Retry
		case se.code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	return retry.Retry
}

func (p *Publisher) ensureLogin(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loggedIn {
		return nil
	}

	form := url.Values{
		"id": {p.username},
		"pw": {p.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", newsUserAgent)

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("naver login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: "login"}
	}
	if !p.hasSessionCookie() {
		return fmt.Errorf("%w: no session cookie after login for %s", domain.ErrLoginFailed, p.username)
	}

	p.loggedIn = true
	return nil
}

func (p *Publisher) hasSessionCookie() bool {
	u, err := url.Parse(p.loginURL)
	if err != nil {
		return false
	}
	for _, c := range p.http.Jar.Cookies(u) {
		if c.Name == sessionCookie && c.Value != "" {
			return true
		}
	}
	return false
}

func (p *Publisher) post(ctx context.Context, title, content string, tags []string) error {
	form := url.Values{
		"blogId":       {p.blogID},
		"title":        {title},
		"contents":     {content},
		"categoryName": {p.category},
		"tagList":      {strings.Join(tags, ",")},
	}

	endpoint := fmt.Sprintf("%s/RabbitWrite.naver", p.blogURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", newsUserAgent)
	req.Header.Set("Referer", fmt.Sprintf("%s/%s/postwrite", p.blogURL, p.blogID))

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("blog post request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Session expired mid-run; force a fresh login on the retry.
		p.mu.Lock()
		p.loggedIn = false
		p.mu.Unlock()
		return &statusError{code: resp.StatusCode, body: truncate(string(body), 200)}
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: truncate(string(body), 200)}
	}
	return nil
}

// statusError carries the HTTP status for retry classification.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
