package app

import (
	"context"
	"log/slog"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// maxCombinedNews caps the merged headline list fed to the analyzer.
const maxCombinedNews = 5

// CombinedNews fans a news request out to several sources. A failing
// source is logged and skipped; the call fails only when every source
// fails.
type CombinedNews []domain.NewsSource

var _ domain.NewsSource = CombinedNews{}

func (c CombinedNews) News(ctx context.Context) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	var firstErr error

	for _, source := range c {
		collected, err := source.News(ctx)
		if err != nil {
			slog.WarnContext(ctx, "News source failed, skipping", "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		items = append(items, collected...)
	}

	if len(items) == 0 && firstErr != nil {
		return nil, firstErr
	}

	domain.SortNewsByImportance(items)
	if len(items) > maxCombinedNews {
		items = items[:maxCombinedNews]
	}
	return items, nil
}
