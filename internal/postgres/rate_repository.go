package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// RateRepo implements domain.RateRepository backed by PostgreSQL.
type RateRepo struct {
	pool *pgxpool.Pool
}

// NewRateRepo creates a RateRepo from the shared pool.
func NewRateRepo(pool *pgxpool.Pool) *RateRepo {
	return &RateRepo{pool: pool}
}

func (r *RateRepo) Insert(ctx context.Context, q domain.Quote) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rates (ticker, close, change, change_percent, observed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, q.Ticker, q.Close, q.Change, q.ChangePercent, q.At)
	if err != nil {
		return fmt.Errorf("failed to insert rate: %w", err)
	}
	return nil
}

func (r *RateRepo) Latest(ctx context.Context, ticker string) (domain.Quote, error) {
	var q domain.Quote
	err := r.pool.QueryRow(ctx, `
		SELECT ticker, close, change, change_percent, observed_at
		FROM rates
		WHERE ticker = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`, ticker).Scan(&q.Ticker, &q.Close, &q.Change, &q.ChangePercent, &q.At)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, domain.ErrNoData
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to get latest rate: %w", err)
	}
	return q, nil
}

func (r *RateRepo) History(ctx context.Context, ticker string, since time.Time) ([]domain.Quote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, close, change, change_percent, observed_at
		FROM rates
		WHERE ticker = $1 AND observed_at >= $2
		ORDER BY observed_at ASC
	`, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate history: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.Ticker, &q.Close, &q.Change, &q.ChangePercent, &q.At); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
