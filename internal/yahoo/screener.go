package yahoo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// screenerIDs maps config category names onto Yahoo's predefined screeners.
var screenerIDs = map[string]string{
	"gainers":     "day_gainers",
	"losers":      "day_losers",
	"most_active": "most_actives",
	"top_etfs":    "top_etfs",
}

const moversPerCategory = 5

type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol                 string  `json:"symbol"`
				ShortName              string  `json:"shortName"`
				RegularMarketPrice     float64 `json:"regularMarketPrice"`
				RegularMarketChangePct float64 `json:"regularMarketChangePercent"`
			} `json:"quotes"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// Movers fetches the top rows of one predefined screener category.
func (c *Client) Movers(ctx context.Context, category string) ([]domain.Mover, error) {
	scrID, ok := screenerIDs[category]
	if !ok {
		return nil, fmt.Errorf("unknown screener category %q", category)
	}

	url := fmt.Sprintf("%s/v1/finance/screener/predefined/saved?scrIds=%s&count=%d", c.baseURL, scrID, moversPerCategory)

	var parsed screenerResponse
	if err := c.getJSON(ctx, "yahoo_screener", url, &parsed); err != nil {
		return nil, err
	}

	if parsed.Finance.Error != nil {
		return nil, fmt.Errorf("screener error for %s: %s (%s)", category, parsed.Finance.Error.Description, parsed.Finance.Error.Code)
	}
	if len(parsed.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener %s: %w", category, domain.ErrNoData)
	}

	quotes := parsed.Finance.Result[0].Quotes
	movers := make([]domain.Mover, 0, len(quotes))
	for _, q := range quotes {
		movers = append(movers, domain.Mover{
			Symbol:        q.Symbol,
			Name:          q.ShortName,
			Price:         q.RegularMarketPrice,
			ChangePercent: q.RegularMarketChangePct,
		})
	}
	return movers, nil
}

// Snapshot collects index quotes and screener categories. Individual
// failures degrade the snapshot instead of failing the run: a market
// overview is context for the post, not its subject.
func (c *Client) Snapshot(ctx context.Context, indices []string, categories []string) (domain.MarketSnapshot, error) {
	snap := domain.MarketSnapshot{
		Categories: make(map[string][]domain.Mover, len(categories)),
	}

	for _, ticker := range indices {
		q, err := c.IndexQuote(ctx, ticker)
		if err != nil {
			slog.WarnContext(ctx, "Index quote failed", "ticker", ticker, "error", err)
			continue
		}
		snap.Indices = append(snap.Indices, q)
	}

	for _, category := range categories {
		movers, err := c.Movers(ctx, category)
		if err != nil {
			slog.WarnContext(ctx, "Screener fetch failed", "category", category, "error", err)
			continue
		}
		snap.Categories[category] = movers
	}

	return snap, nil
}
