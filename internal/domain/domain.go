package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Quote is a single observation of a ticker, with change computed against the
// previous close.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Close         float64   `json:"close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	At            time.Time `json:"at"`
}

// Candle is one point of a daily close series.
type Candle struct {
	At    time.Time `json:"at"`
	Close float64   `json:"close"`
}

// Mover is one row of a market screener category (gainers, losers, ...).
type Mover struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

// MarketSnapshot is the broader market context collected alongside the
// exchange rate: configured index quotes plus screener categories.
type MarketSnapshot struct {
	Indices    []Quote            `json:"indices"`
	Categories map[string][]Mover `json:"categories"`
}

// Importance ranks a news item for prompt inclusion. High items sort first.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceMedium
	ImportanceHigh
)

func (i Importance) String() string {
	switch i {
	case ImportanceHigh:
		return "high"
	case ImportanceMedium:
		return "medium"
	default:
		return "low"
	}
}

// NewsItem is a collected headline with its source and importance.
type NewsItem struct {
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Link       string     `json:"link"`
	Source     string     `json:"source"`
	At         time.Time  `json:"at"`
	Importance Importance `json:"importance"`
}

// SortNewsByImportance orders items high-first, preserving source order
// within the same importance (stable insertion sort; slices stay tiny).
func SortNewsByImportance(items []NewsItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Importance > items[j-1].Importance; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// Analysis is the generated post content. Fallback is true when the LLM was
// unavailable and the deterministic template was used instead.
type Analysis struct {
	Title      string   `json:"title"`
	Commentary string   `json:"commentary"`
	Tags       []string `json:"tags"`
	Fallback   bool     `json:"fallback"`
}

// PostStatus is the lifecycle state of a stored post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

// Post is one blog post produced for a schedule slot.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Slot        string     `json:"slot"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Status      PostStatus `json:"status"`
	Fallback    bool       `json:"fallback"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RateSource fetches the exchange rate quote.
type RateSource interface {
	Rate(ctx context.Context) (Quote, error)
}

// MarketSource fetches index quotes and screener categories.
type MarketSource interface {
	Snapshot(ctx context.Context, indices []string, categories []string) (MarketSnapshot, error)
}

// NewsSource collects headlines relevant to the exchange rate.
type NewsSource interface {
	News(ctx context.Context) ([]NewsItem, error)
}

// Analyzer turns collected data into post content.
type Analyzer interface {
	Analyze(ctx context.Context, quote Quote, market MarketSnapshot, news []NewsItem) (Analysis, error)
}

// Publisher pushes a finished post to the blog platform.
type Publisher interface {
	Publish(ctx context.Context, title, content string, tags []string) error
}

// PostRepository persists post history.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	GetBySlot(ctx context.Context, slot string) (*Post, error)
	ListRecent(ctx context.Context, limit int) ([]Post, error)
}

// RateRepository persists observed exchange rates.
type RateRepository interface {
	Insert(ctx context.Context, q Quote) error
	Latest(ctx context.Context, ticker string) (Quote, error)
	History(ctx context.Context, ticker string, since time.Time) ([]Quote, error)
}

// QuoteCache caches the most recent quote for fast API reads.
type QuoteCache interface {
	Set(ctx context.Context, q Quote, ttl time.Duration) error
	Get(ctx context.Context, ticker string) (Quote, bool, error)
}

// SlotLock guarantees at-most-once publishing per schedule slot across
// instances.
type SlotLock interface {
	Acquire(ctx context.Context, slot string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, slot string) error
}
