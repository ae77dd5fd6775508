package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// KnownCategories are the market screener categories the collector supports.
var KnownCategories = []string{"gainers", "losers", "most_active", "top_etfs"}

// BotConfig is the YAML bot configuration file. Field layout follows the
// deployed config/config.yaml; keys are unique within their mapping and the
// document is immutable after Load.
type BotConfig struct {
	DataCollection DataCollection `yaml:"data_collection"`
	BlogSettings   BlogSettings   `yaml:"blog_settings"`
	Logging        LoggingConfig  `yaml:"logging"`
	Settings       Settings       `yaml:"settings"`
	Blog           Blog           `yaml:"blog"`
	YahooFinance   YahooFinance   `yaml:"yahoo_finance"`
	NaverFinance   NaverFinance   `yaml:"naver_finance"`
}

type DataCollection struct {
	YFinance   YFinanceCollection `yaml:"yfinance"`
	MarketData MarketData         `yaml:"market_data"`
}

type YFinanceCollection struct {
	HistoryDays int      `yaml:"history_days"`
	Indices     []string `yaml:"indices"`
}

type MarketData struct {
	Categories []string `yaml:"categories"`
}

type BlogSettings struct {
	Platform    string `yaml:"platform"`
	CategoryID  string `yaml:"category_id"`
	TagsLimit   int    `yaml:"tags_limit"`
	AutoPublish bool   `yaml:"auto_publish"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Settings struct {
	AutoConfirm bool `yaml:"auto_confirm"`
	AutoPost    bool `yaml:"auto_post"`
	AutoLogin   bool `yaml:"auto_login"`
}

type Blog struct {
	URL      string   `yaml:"url"`
	Category string   `yaml:"category"`
	PostTime PostTime `yaml:"post_time"`
}

type PostTime struct {
	Morning string `yaml:"morning"`
	Evening string `yaml:"evening"`
}

type YahooFinance struct {
	USDKRWTicker string `yaml:"usd_krw_ticker"`
	LookbackDays int    `yaml:"lookback_days"`
}

type NaverFinance struct {
	ExchangeRateURL string `yaml:"exchange_rate_url"`
}

// DefaultBotConfig returns the configuration shipped with the bot.
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		DataCollection: DataCollection{
			YFinance: YFinanceCollection{
				HistoryDays: 3,
				Indices:     []string{"^GSPC", "^DJI", "^IXIC", "^RUT"},
			},
			MarketData: MarketData{
				Categories: []string{"gainers", "losers", "most_active", "top_etfs"},
			},
		},
		BlogSettings: BlogSettings{
			Platform:    "naver",
			CategoryID:  "default",
			TagsLimit:   10,
			AutoPublish: true,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "%(asctime)s - %(name)s - %(levelname)s - %(message)s",
			File:   "logs/exchange_rate_bot.log",
		},
		Settings: Settings{
			AutoConfirm: true,
			AutoPost:    true,
			AutoLogin:   true,
		},
		Blog: Blog{
			URL:      "https://blog.naver.com/gongnyangi",
			Category: "출퇴근 환율분석",
			PostTime: PostTime{Morning: "08:30", Evening: "17:30"},
		},
		YahooFinance: YahooFinance{
			USDKRWTicker: "KRW=X",
			LookbackDays: 7,
		},
		NaverFinance: NaverFinance{
			ExchangeRateURL: "https://finance.naver.com/marketindex/exchangeDetail.naver?marketindexCd=FX_USDKRW",
		},
	}
}

// LoadBotConfig reads and validates the YAML bot configuration file.
func LoadBotConfig(path string) (*BotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config: %w", err)
	}

	var cfg BotConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bot config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bot config %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the loaded document against the constraints the rest of the
// bot relies on.
func (c *BotConfig) Validate() error {
	if c.BlogSettings.Platform != "naver" {
		return fmt.Errorf("blog_settings.platform must be %q, got %q", "naver", c.BlogSettings.Platform)
	}
	if c.BlogSettings.TagsLimit < 1 {
		return fmt.Errorf("blog_settings.tags_limit must be >= 1, got %d", c.BlogSettings.TagsLimit)
	}
	if c.DataCollection.YFinance.HistoryDays < 1 {
		return fmt.Errorf("data_collection.yfinance.history_days must be >= 1, got %d", c.DataCollection.YFinance.HistoryDays)
	}
	if len(c.DataCollection.YFinance.Indices) == 0 {
		return fmt.Errorf("data_collection.yfinance.indices must not be empty")
	}
	for _, cat := range c.DataCollection.MarketData.Categories {
		if !isKnownCategory(cat) {
			return fmt.Errorf("unknown market data category %q", cat)
		}
	}
	if c.YahooFinance.USDKRWTicker == "" {
		return fmt.Errorf("yahoo_finance.usd_krw_ticker is required")
	}
	if c.YahooFinance.LookbackDays < 1 {
		return fmt.Errorf("yahoo_finance.lookback_days must be >= 1, got %d", c.YahooFinance.LookbackDays)
	}
	if c.NaverFinance.ExchangeRateURL == "" {
		return fmt.Errorf("naver_finance.exchange_rate_url is required")
	}
	if _, err := ParsePostTime(c.Blog.PostTime.Morning); err != nil {
		return fmt.Errorf("blog.post_time.morning: %w", err)
	}
	if _, err := ParsePostTime(c.Blog.PostTime.Evening); err != nil {
		return fmt.Errorf("blog.post_time.evening: %w", err)
	}
	return nil
}

// ParsePostTime parses an "HH:MM" post time into a clock offset from
// midnight.
func ParsePostTime(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid post time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func isKnownCategory(cat string) bool {
	for _, known := range KnownCategories {
		if cat == known {
			return true
		}
	}
	return false
}
