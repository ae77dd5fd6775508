package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/seyoungseyoung/blog-KRW/internal/analyzer"
	"github.com/seyoungseyoung/blog-KRW/internal/app"
	"github.com/seyoungseyoung/blog-KRW/internal/config"
	"github.com/seyoungseyoung/blog-KRW/internal/deepseek"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
	"github.com/seyoungseyoung/blog-KRW/internal/naver"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/logging"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/version"
	"github.com/seyoungseyoung/blog-KRW/internal/postgres"
	"github.com/seyoungseyoung/blog-KRW/internal/redis"
	"github.com/seyoungseyoung/blog-KRW/internal/scheduler"
	"github.com/seyoungseyoung/blog-KRW/internal/server"
	"github.com/seyoungseyoung/blog-KRW/internal/yahoo"
)

const leaderLeaseTTL = 2 * time.Minute

func setupConfig() (*config.Config, *config.BotConfig) {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	bot, err := config.LoadBotConfig(cfg.BotConfig)
	if err != nil {
		log.Fatalf("Failed to load bot config: %v", err)
	}
	return cfg, bot
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func postingLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		slog.Warn("Failed to load Asia/Seoul tzdata, using fixed offset", "error", err)
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func main() {
	clock := clockwork.NewRealClock()

	cfg, bot := setupConfig()

	if err := logging.InitLoggerWithFile(cfg.LogLevel, cfg.LogFormat, bot.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)
	metrics.BuildInfo.WithLabelValues(version.Version, version.Commit, version.BuildTime, runtime.Version()).Set(1)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	loc := postingLocation()
	instanceID := uuid.NewString()

	deepseekClient, err := deepseek.NewClient(cfg.DeepSeekAPIKey)
	if err != nil {
		slog.Error("Failed to create DeepSeek client", "error", err)
		os.Exit(1)
	}

	publisher, err := naver.NewPublisher(
		cfg.NaverUsername, cfg.NaverPassword,
		naver.BlogIDFromURL(bot.Blog.URL), bot.Blog.Category,
	)
	if err != nil {
		slog.Error("Failed to create blog publisher", "error", err)
		os.Exit(1)
	}

	morning, _ := config.ParsePostTime(bot.Blog.PostTime.Morning)
	evening, _ := config.ParsePostTime(bot.Blog.PostTime.Evening)
	schedule := scheduler.NewSchedule(morning, evening, loc)

	yahooClient := yahoo.NewClient(
		bot.YahooFinance.USDKRWTicker,
		bot.YahooFinance.LookbackDays,
		bot.DataCollection.YFinance.HistoryDays,
	)
	postRepo := postgres.NewPostRepo(pool)
	rateRepo := postgres.NewRateRepo(pool)
	quoteCache := redis.NewQuoteCache(redisClient)

	service := app.NewService(app.Config{
		Schedule: schedule,
		Rates:    yahooClient,
		Market:   yahooClient,
		News: app.CombinedNews{
			naver.NewNewsCollector(bot.NaverFinance.ExchangeRateURL),
			yahoo.NewNewsCollector(),
		},
		Analyzer:  analyzer.NewEngine(deepseekClient, clock, loc, bot.BlogSettings.TagsLimit),
		Publisher: publisher,
		Format: func(commentary string, now time.Time) string {
			return naver.FormatContent(commentary, now.In(loc))
		},
		Posts:       postRepo,
		RateRepo:    rateRepo,
		Cache:       quoteCache,
		Locks:       redis.NewSlotLock(redisClient, instanceID),
		Clock:       clock,
		AutoPublish: bot.BlogSettings.AutoPublish && bot.Settings.AutoPost,
		Indices:     bot.DataCollection.YFinance.Indices,
		Categories:  bot.DataCollection.MarketData.Categories,
	})

	elector := redis.NewLeaderElection(redisClient, instanceID, "leader:scheduler", leaderLeaseTTL)
	runner := scheduler.NewRunner(schedule, clock, elector, leaderLeaseTTL, func(ctx context.Context, slot scheduler.Slot) error {
		return service.RunSlot(ctx, slot)
	})

	healthChecks := []server.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: redisClient.Ping},
	}
	srv := server.NewServer(cfg.Port, postRepo, rateRepo, quoteCache, bot.YahooFinance.USDKRWTicker, healthChecks)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runner.Start(ctx)
	}()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutdown signal received, cleaning up...")

	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
