package server

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/errors"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	api.GET("/posts", s.handleListPosts)
	api.GET("/posts/:date/:name", s.handleGetPost)
	api.GET("/quote", s.handleGetQuote)
}

func (s *Server) handleListPosts(c echo.Context) error {
	limit := defaultPostLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return errors.ValidationError("limit must be a positive integer").WithContext("limit", raw)
		}
		limit = min(parsed, maxPostLimit)
	}

	posts, err := s.posts.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return errors.InternalError("failed to list posts", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	if err := c.JSON(http.StatusOK, posts); err != nil {
		return fmt.Errorf("failed to write posts response: %w", err)
	}
	return nil
}

func (s *Server) handleGetPost(c echo.Context) error {
	slot := c.Param("date") + "/" + c.Param("name")

	post, err := s.posts.GetBySlot(c.Request().Context(), slot)
	if stderrors.Is(err, domain.ErrPostNotFound) {
		return errors.NotFoundError("no post for slot").WithContext("slot", slot)
	}
	if err != nil {
		return errors.InternalError("failed to get post", err)
	}

	if err := c.JSON(http.StatusOK, post); err != nil {
		return fmt.Errorf("failed to write post response: %w", err)
	}
	return nil
}

// handleGetQuote serves the latest exchange rate: the Redis cache first,
// the database as fallback.
func (s *Server) handleGetQuote(c echo.Context) error {
	ctx := c.Request().Context()

	quote, found, err := s.cache.Get(ctx, s.ticker)
	if err != nil {
		// Cache trouble is not fatal; the database still has the answer.
		slog.WarnContext(ctx, "Quote cache read failed, falling back to database", "error", err)
		found = false
	}
	if !found {
		quote, err = s.rates.Latest(ctx, s.ticker)
		if stderrors.Is(err, domain.ErrNoData) {
			return errors.NotFoundError("no rate observed yet").WithContext("ticker", s.ticker)
		}
		if err != nil {
			return errors.InternalError("failed to read latest rate", err)
		}
	}

	if err := c.JSON(http.StatusOK, quote); err != nil {
		return fmt.Errorf("failed to write quote response: %w", err)
	}
	return nil
}
