package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/retry"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	requestTimeout = 15 * time.Second
)

var defaultPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   1 * time.Second,
	RateLimitBackoff: 10 * time.Second,
}

// Client talks to the Yahoo Finance chart and screener endpoints. All
// requests share one rate limiter so bursts across tickers stay polite.
type Client struct {
	baseURL      string
	ticker       string
	lookbackDays int
	historyDays  int
	http         *http.Client
	limiter      *rate.Limiter
	policy       retry.Policy
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPolicy overrides the retry policy (tests).
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient creates a Yahoo Finance client for the given exchange-rate
// ticker (e.g. "KRW=X"). lookbackDays is the chart range for that ticker,
// historyDays the range for index quotes.
func NewClient(ticker string, lookbackDays, historyDays int, opts ...Option) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		ticker:       ticker,
		lookbackDays: lookbackDays,
		historyDays:  historyDays,
		http:         &http.Client{Timeout: requestTimeout},
		limiter:      rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		policy:       defaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError carries the HTTP status for retry classification.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// Classify maps fetch errors onto retry actions: 429 waits out the rate
// limit, 5xx retries, other HTTP statuses are permanent, everything else
// (network, timeouts) retries.
func Classify(err error) retry.Action {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.code == http.StatusTooManyRequests:
			return retry.After
		case se.code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	return retry.Retry
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Rate fetches the current exchange-rate quote, computing change against the
// previous close. A single-candle series yields zero change.
func (c *Client) Rate(ctx context.Context) (domain.Quote, error) {
	candles, err := c.History(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	return quoteFromCandles(c.ticker, candles)
}

// History fetches the configured lookback range of daily closes for the
// exchange-rate ticker.
func (c *Client) History(ctx context.Context) ([]domain.Candle, error) {
	return c.history(ctx, c.ticker, c.lookbackDays)
}

// IndexQuote fetches a quote for an arbitrary ticker (market indices),
// using the configured history range.
func (c *Client) IndexQuote(ctx context.Context, ticker string) (domain.Quote, error) {
	candles, err := c.history(ctx, ticker, c.historyDays)
	if err != nil {
		return domain.Quote{}, err
	}
	return quoteFromCandles(ticker, candles)
}

func (c *Client) history(ctx context.Context, ticker string, days int) ([]domain.Candle, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", c.baseURL, ticker, days)

	var parsed chartResponse
	if err := c.getJSON(ctx, "yahoo_chart", url, &parsed); err != nil {
		return nil, err
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s (%s)", ticker, parsed.Chart.Error.Description, parsed.Chart.Error.Code)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart for %s: %w", ticker, domain.ErrNoData)
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart for %s: %w", ticker, domain.ErrNoData)
	}

	closes := result.Indicators.Quote[0].Close
	candles := make([]domain.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo emits null closes for unfinished sessions; skip them.
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		candles = append(candles, domain.Candle{
			At:    time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("chart for %s: %w", ticker, domain.ErrNoData)
	}
	return candles, nil
}

func (c *Client) getJSON(ctx context.Context, source, url string, out any) error {
	start := time.Now()
	body, err := retry.Do(ctx, c.policy, Classify, func() ([]byte, error) {
		return c.fetch(ctx, url)
	})
	metrics.CollectorFetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFetchesTotal.WithLabelValues(source, "error").Inc()
		return err
	}
	metrics.CollectorFetchesTotal.WithLabelValues(source, "success").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", source, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: truncate(string(body), 200)}
	}
	return body, nil
}

func quoteFromCandles(ticker string, candles []domain.Candle) (domain.Quote, error) {
	if len(candles) == 0 {
		return domain.Quote{}, domain.ErrNoData
	}

	latest := candles[len(candles)-1]
	q := domain.Quote{
		Ticker: ticker,
		Close:  latest.Close,
		At:     latest.At,
	}

	if len(candles) > 1 {
		prev := candles[len(candles)-2].Close
		q.Change = latest.Close - prev
		if prev != 0 {
			q.ChangePercent = q.Change / prev * 100
		}
	}
	return q, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
