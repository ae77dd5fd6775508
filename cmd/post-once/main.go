// Command post-once runs a single posting slot by hand, outside the
// scheduler loop. Useful for backfilling a slot the bot missed or for
// previewing a post with --dry-run.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/seyoungseyoung/blog-KRW/internal/analyzer"
	"github.com/seyoungseyoung/blog-KRW/internal/app"
	"github.com/seyoungseyoung/blog-KRW/internal/config"
	"github.com/seyoungseyoung/blog-KRW/internal/deepseek"
	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/naver"
	"github.com/seyoungseyoung/blog-KRW/internal/platform/logging"
	"github.com/seyoungseyoung/blog-KRW/internal/postgres"
	"github.com/seyoungseyoung/blog-KRW/internal/redis"
	"github.com/seyoungseyoung/blog-KRW/internal/scheduler"
	"github.com/seyoungseyoung/blog-KRW/internal/yahoo"
)

const runTimeout = 10 * time.Minute

func main() {
	var (
		slotName = flag.String("slot", "", "Slot to run: morning or evening (default: the slot nearest to now)")
		dryRun   = flag.Bool("dry-run", false, "Build and store the post as a draft without publishing")
	)
	flag.Parse()

	if *slotName != "" && *slotName != string(domain.SlotMorning) && *slotName != string(domain.SlotEvening) {
		log.Fatalf("Unknown slot %q, want %s or %s", *slotName, domain.SlotMorning, domain.SlotEvening)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	bot, err := config.LoadBotConfig(cfg.BotConfig)
	if err != nil {
		log.Fatalf("Failed to load bot config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}

	deepseekClient, err := deepseek.NewClient(cfg.DeepSeekAPIKey)
	if err != nil {
		log.Fatalf("Failed to create DeepSeek client: %v", err)
	}
	publisher, err := naver.NewPublisher(
		cfg.NaverUsername, cfg.NaverPassword,
		naver.BlogIDFromURL(bot.Blog.URL), bot.Blog.Category,
	)
	if err != nil {
		log.Fatalf("Failed to create blog publisher: %v", err)
	}

	morning, _ := config.ParsePostTime(bot.Blog.PostTime.Morning)
	evening, _ := config.ParsePostTime(bot.Blog.PostTime.Evening)
	schedule := scheduler.NewSchedule(morning, evening, loc)

	clock := clockwork.NewRealClock()
	yahooClient := yahoo.NewClient(
		bot.YahooFinance.USDKRWTicker,
		bot.YahooFinance.LookbackDays,
		bot.DataCollection.YFinance.HistoryDays,
	)

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
		Posts:       postgres.NewPostRepo(pool),
		RateRepo:    postgres.NewRateRepo(pool),
		Cache:       redis.NewQuoteCache(redisClient),
		Locks:       redis.NewSlotLock(redisClient, uuid.NewString()),
		Clock:       clock,
		AutoPublish: !*dryRun && bot.BlogSettings.AutoPublish && bot.Settings.AutoPost,
		Indices:     bot.DataCollection.YFinance.Indices,
		Categories:  bot.DataCollection.MarketData.Categories,
	})

	slot := pickSlot(schedule, clock.Now().In(loc), *slotName)
	slog.Info("Running slot", "slot", slot.ID(), "dry_run", *dryRun)

	if err := service.RunSlot(ctx, slot); err != nil {
		log.Fatalf("Slot run failed: %v", err)
	}
	slog.Info("Slot run complete", "slot", slot.ID())
}

// pickSlot resolves which slot to run. With an explicit name it targets
// today's slot of that name, otherwise the next scheduled slot counts.
func pickSlot(schedule *scheduler.Schedule, now time.Time, name string) scheduler.Slot {
	if name == "" {
		return schedule.NextSlot(now)
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for slot := schedule.NextSlot(day.Add(-time.Second)); ; slot = schedule.NextSlot(slot.At) {
		if string(slot.Name) == name {
			return slot
		}
	}
}
