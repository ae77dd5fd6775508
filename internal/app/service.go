// Package app orchestrates one posting run: collect, analyze, publish,
// record.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/correlation"
	"github.com/seyoungseyoung/blog-KRW/internal/scheduler"
)

const (
	// slotLockTTL covers the whole slot day, so a crashed run cannot be
	// double-posted by a restart.
	slotLockTTL = 12 * time.Hour

	quoteCacheTTL = time.Hour
)

// ContentFormatter renders commentary text into publishable HTML.
type ContentFormatter func(commentary string, now time.Time) string

// Service runs the collect-analyze-publish pipeline for one slot.
type Service struct {
	schedule  *scheduler.Schedule
	rates     domain.RateSource
	market    domain.MarketSource
	news      domain.NewsSource
	analyzer  domain.Analyzer
	publisher domain.Publisher
	format    ContentFormatter

	posts    domain.PostRepository
	rateRepo domain.RateRepository
	cache    domain.QuoteCache
	locks    domain.SlotLock

	clock       clockwork.Clock
	autoPublish bool
	indices     []string
	categories  []string

	group singleflight.Group
}

// Config wires a Service.
type Config struct {
	Schedule  *scheduler.Schedule
	Rates     domain.RateSource
	Market    domain.MarketSource
	News      domain.NewsSource
	Analyzer  domain.Analyzer
	Publisher domain.Publisher
	Format    ContentFormatter

	Posts    domain.PostRepository
	RateRepo domain.RateRepository
	Cache    domain.QuoteCache
	Locks    domain.SlotLock

	Clock       clockwork.Clock
	AutoPublish bool
	Indices     []string
	Categories  []string
}

// NewService creates the orchestration service.
func NewService(cfg Config) *Service {
	return &Service{
		schedule:    cfg.Schedule,
		rates:       cfg.Rates,
		market:      cfg.Market,
		news:        cfg.News,
		analyzer:    cfg.Analyzer,
		publisher:   cfg.Publisher,
		format:      cfg.Format,
		posts:       cfg.Posts,
		rateRepo:    cfg.RateRepo,
		cache:       cfg.Cache,
		locks:       cfg.Locks,
		clock:       cfg.Clock,
		autoPublish: cfg.AutoPublish,
		indices:     cfg.Indices,
		categories:  cfg.Categories,
	}
}

// RunSlot executes the pipeline for one slot. Concurrent calls for the
// same slot collapse into a single run; across instances the slot lock
// guarantees at-most-once publishing.
func (s *Service) RunSlot(ctx context.Context, slot scheduler.Slot) error {
	_, err, _ := s.group.Do(slot.ID(), func() (any, error) {
		return nil, s.runSlot(ctx, slot)
	})
	return err
}

func (s *Service) runSlot(ctx context.Context, slot scheduler.Slot) error {
	ctx = correlation.WithID(ctx, correlation.NewID())
	start := s.clock.Now()

	err := s.execute(ctx, slot)
	metrics.SchedulerRunDuration.Observe(s.clock.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.SchedulerRunsTotal.WithLabelValues("completed").Inc()
	case errors.Is(err, domain.ErrQuietWindow):
		metrics.SchedulerRunsTotal.WithLabelValues("skipped_quiet").Inc()
	case errors.Is(err, domain.ErrSlotTaken):
		metrics.SchedulerRunsTotal.WithLabelValues("skipped_slot_taken").Inc()
	default:
		metrics.SchedulerRunsTotal.WithLabelValues("failed").Inc()
	}
	return err
}

func (s *Service) execute(ctx context.Context, slot scheduler.Slot) error {
	now := s.clock.Now()
	if s.schedule.InQuietWindow(now) {
		slog.InfoContext(ctx, "Inside quiet window, skipping slot", "slot", slot.ID())
		return domain.ErrQuietWindow
	}

	acquired, err := s.locks.Acquire(ctx, slot.ID(), slotLockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	if !acquired {
		slog.InfoContext(ctx, "Slot already claimed", "slot", slot.ID())
		return domain.ErrSlotTaken
	}

	quote, err := s.rates.Rate(ctx)
	if err != nil {
		// Nothing was posted yet; free the slot so a later manual run
		// can still fill it.
		if releaseErr := s.locks.Release(ctx, slot.ID()); releaseErr != nil {
			slog.WarnContext(ctx, "Failed to release slot lock", "slot", slot.ID(), "error", releaseErr)
		}
		return fmt.Errorf("rate collection failed: %w", err)
	}
	slog.InfoContext(ctx, "Exchange rate collected",
		"ticker", quote.Ticker, "close", quote.Close, "change_percent", quote.ChangePercent)

	news, err := s.news.News(ctx)
	if err != nil {
		slog.WarnContext(ctx, "News collection failed, continuing without news", "error", err)
		news = nil
	}

	market, err := s.market.Snapshot(ctx, s.indices, s.categories)
	if err != nil {
		slog.WarnContext(ctx, "Market snapshot failed, continuing without market data", "error", err)
		market = domain.MarketSnapshot{}
	}

	analysis, err := s.analyzer.Analyze(ctx, quote, market, news)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	post := &domain.Post{
		Slot:     slot.ID(),
		Title:    analysis.Title,
		Content:  s.format(analysis.Commentary, now),
		Tags:     analysis.Tags,
		Status:   domain.PostStatusDraft,
		Fallback: analysis.Fallback,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return fmt.Errorf("failed to store post: %w", err)
	}

	if err := s.publish(ctx, post); err != nil {
		return err
	}

	s.record(ctx, quote)
	return nil
}

func (s *Service) publish(ctx context.Context, post *domain.Post) error {
	if !s.autoPublish {
		slog.InfoContext(ctx, "Auto-publish disabled, keeping draft", "slot", post.Slot, "title", post.Title)
		metrics.PublishAttemptsTotal.WithLabelValues("dry_run").Inc()
		return nil
	}

	start := s.clock.Now()
	err := s.publisher.Publish(ctx, post.Title, post.Content, post.Tags)
	metrics.PublishDuration.Observe(s.clock.Since(start).Seconds())

	if err != nil {
		metrics.PublishAttemptsTotal.WithLabelValues("failed").Inc()
		if markErr := s.posts.MarkFailed(ctx, post.ID); markErr != nil {
			slog.WarnContext(ctx, "Failed to mark post failed", "error", markErr)
		}
		return fmt.Errorf("publish failed: %w", err)
	}

	metrics.PublishAttemptsTotal.WithLabelValues("published").Inc()
	publishedAt := s.clock.Now()
	if err := s.posts.MarkPublished(ctx, post.ID, publishedAt); err != nil {
		slog.WarnContext(ctx, "Failed to mark post published", "error", err)
	}
	slog.InfoContext(ctx, "Post published", "slot", post.Slot, "title", post.Title)
	return nil
}

// record persists and caches the observed quote. Best effort: the post is
// already out, so storage hiccups only cost history.
func (s *Service) record(ctx context.Context, quote domain.Quote) {
	if err := s.rateRepo.Insert(ctx, quote); err != nil {
		slog.WarnContext(ctx, "Failed to store rate observation", "error", err)
	}
	if err := s.cache.Set(ctx, quote, quoteCacheTTL); err != nil {
		slog.WarnContext(ctx, "Failed to cache quote", "error", err)
	}
}
