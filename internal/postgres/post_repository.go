package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// postColumns must match the Scan order in scanPost.
const postColumns = `id, slot, title, content, tags, status, fallback, published_at, created_at`

// PostRepo implements domain.PostRepository backed by PostgreSQL.
type PostRepo struct {
	pool *pgxpool.Pool
}

// NewPostRepo creates a PostRepo from the shared pool.
func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID, &post.Slot, &post.Title, &post.Content, &post.Tags,
		&post.Status, &post.Fallback, &post.PublishedAt, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Status == "" {
		post.Status = domain.PostStatusDraft
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (id, slot, title, content, tags, status, fallback, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, post.ID, post.Slot, post.Title, post.Content, post.Tags, post.Status, post.Fallback, post.PublishedAt).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepo) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET status = $1, published_at = $2
		WHERE id = $3
	`, domain.PostStatusPublished, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark post published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET status = $1
		WHERE id = $2
	`, domain.PostStatusFailed, id)
	if err != nil {
		return fmt.Errorf("failed to mark post failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) GetBySlot(ctx context.Context, slot string) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slot = $1`, slot))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by slot: %w", err)
	}
	return post, nil
}

func (r *PostRepo) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}
