// Package analyzer turns collected market data into blog post content,
// using an LLM with a deterministic fallback.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seyoungseyoung/blog-KRW/internal/deepseek"
	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
)

const titlePrefixFormat = "[01/02 15:04 환율분석]"

// Completer is the LLM surface the engine needs.
type Completer interface {
	Complete(ctx context.Context, messages []deepseek.Message) (string, error)
}

// Engine implements domain.Analyzer: commentary generation, a refinement
// pass, title generation, and tags. LLM failure falls back to a
// deterministic template so a scheduled slot never goes unfilled.
type Engine struct {
	llm       Completer
	clock     clockwork.Clock
	loc       *time.Location
	tagsLimit int
}

// NewEngine creates an analysis engine. loc is the timezone used for the
// title timestamp.
func NewEngine(llm Completer, clock clockwork.Clock, loc *time.Location, tagsLimit int) *Engine {
	return &Engine{llm: llm, clock: clock, loc: loc, tagsLimit: tagsLimit}
}

// Analyze produces the post for the given collected data.
func (e *Engine) Analyze(ctx context.Context, quote domain.Quote, market domain.MarketSnapshot, news []domain.NewsItem) (domain.Analysis, error) {
	now := e.clock.Now().In(e.loc)

	commentary, err := e.commentary(ctx, quote, market, news)
	if err != nil {
		slog.WarnContext(ctx, "LLM commentary failed, using fallback", "error", err)
		metrics.AnalyzerFallbacksTotal.Inc()
		commentary = fallbackCommentary(quote, news, now)
		return domain.Analysis{
			Title:      fallbackTitle(quote, now),
			Commentary: commentary,
			Tags:       GenerateTags(commentary, market, e.tagsLimit),
			Fallback:   true,
		}, nil
	}

	title, err := e.title(ctx, commentary, quote)
	if err != nil {
		slog.WarnContext(ctx, "LLM title failed, using fallback title", "error", err)
		title = fallbackTitle(quote, now)
	} else {
		title = fmt.Sprintf("%s %s", now.Format(titlePrefixFormat), title)
	}

	return domain.Analysis{
		Title:      title,
		Commentary: commentary,
		Tags:       GenerateTags(commentary, market, e.tagsLimit),
	}, nil
}

// complete wraps one LLM call with per-kind metrics.
func (e *Engine) complete(ctx context.Context, kind string, messages []deepseek.Message) (string, error) {
	start := e.clock.Now()
	text, err := e.llm.Complete(ctx, messages)
	metrics.AnalyzerRequestDuration.WithLabelValues(kind).Observe(e.clock.Since(start).Seconds())
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues(kind, "error").Inc()
		return "", err
	}
	metrics.AnalyzerRequestsTotal.WithLabelValues(kind, "success").Inc()
	return text, nil
}

// commentary generates the analysis text and runs it through one
// refinement pass to smooth tone and trim repetition.
func (e *Engine) commentary(ctx context.Context, quote domain.Quote, market domain.MarketSnapshot, news []domain.NewsItem) (string, error) {
	draft, err := e.complete(ctx, "commentary", []deepseek.Message{
		{Role: "system", Content: commentarySystemPrompt},
		{Role: "user", Content: buildCommentaryPrompt(quote, market, news)},
	})
	if err != nil {
		return "", err
	}

	refined, err := e.complete(ctx, "refine", []deepseek.Message{
		{Role: "system", Content: refineSystemPrompt},
		{Role: "user", Content: draft},
	})
	if err != nil {
		// The draft is usable on its own; refinement is best effort.
		slog.WarnContext(ctx, "Refinement pass failed, keeping draft", "error", err)
		return draft, nil
	}
	return refined, nil
}

func (e *Engine) title(ctx context.Context, commentary string, quote domain.Quote) (string, error) {
	title, err := e.complete(ctx, "title", []deepseek.Message{
		{Role: "system", Content: titleSystemPrompt},
		{Role: "user", Content: buildTitlePrompt(commentary, quote)},
	})
	if err != nil {
		return "", err
	}

	title = strings.TrimSpace(strings.Trim(title, `"`))
	if title == "" {
		return "", fmt.Errorf("empty title from model")
	}
	// Keep only the first line if the model rambles.
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return title, nil
}

func directionWord(change float64) string {
	switch {
	case change > 0:
		return "상승"
	case change < 0:
		return "하락"
	default:
		return "보합"
	}
}

func fallbackTitle(quote domain.Quote, now time.Time) string {
	return fmt.Sprintf("%s 달러 환율 %.2f원, %s 마감", now.Format(titlePrefixFormat), quote.Close, directionWord(quote.Change))
}

func fallbackCommentary(quote domain.Quote, news []domain.NewsItem, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("1. 환율 현황\n")
	fmt.Fprintf(&sb, "%s 기준 원/달러 환율은 %.2f원입니다. 전일 대비 %+.2f원 (%+.2f%%) %s했습니다.\n\n",
		now.Format("2006년 01월 02일 15:04"), quote.Close, quote.Change, quote.ChangePercent, directionWord(quote.Change))

	if len(news) > 0 {
		sb.WriteString("2. 주요 뉴스\n")
		for _, item := range news {
			fmt.Fprintf(&sb, "- %s (%s)\n", item.Title, item.Source)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("3. 참고\n")
	sb.WriteString("자동 수집된 데이터 기반의 요약입니다. 상세 분석은 다음 포스팅에서 이어집니다.")
	return sb.String()
}
