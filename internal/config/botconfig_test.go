package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seyoungseyoung/blog-KRW/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func defaultYAML(t *testing.T) string {
	t.Helper()
	data, err := yaml.Marshal(config.DefaultBotConfig())
	require.NoError(t, err)
	return string(data)
}

func TestLoadBotConfig_ReadsDocumentedFields(t *testing.T) {
	path := writeConfig(t, defaultYAML(t))

	cfg, err := config.LoadBotConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.BlogSettings.TagsLimit)
	assert.Equal(t, 3, cfg.DataCollection.YFinance.HistoryDays)
	assert.Equal(t, []string{"^GSPC", "^DJI", "^IXIC", "^RUT"}, cfg.DataCollection.YFinance.Indices)
	assert.Equal(t, []string{"gainers", "losers", "most_active", "top_etfs"}, cfg.DataCollection.MarketData.Categories)
	assert.Equal(t, "naver", cfg.BlogSettings.Platform)
	assert.True(t, cfg.BlogSettings.AutoPublish)
	assert.Equal(t, "KRW=X", cfg.YahooFinance.USDKRWTicker)
	assert.Equal(t, 7, cfg.YahooFinance.LookbackDays)
	assert.Equal(t, "08:30", cfg.Blog.PostTime.Morning)
	assert.Equal(t, "17:30", cfg.Blog.PostTime.Evening)
	assert.Equal(t, "logs/exchange_rate_bot.log", cfg.Logging.File)
}

func TestLoadBotConfig_RoundTrip(t *testing.T) {
	original := config.DefaultBotConfig()

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	path := writeConfig(t, string(data))
	loaded, err := config.LoadBotConfig(path)
	require.NoError(t, err)

	assert.Equal(t, original, loaded)
}

func TestLoadBotConfig_MissingFile(t *testing.T) {
	_, err := config.LoadBotConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadBotConfig_RejectsUnknownPlatform(t *testing.T) {
	cfg := config.DefaultBotConfig()
	cfg.BlogSettings.Platform = "tistory"

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	_, err = config.LoadBotConfig(writeConfig(t, string(data)))
	assert.ErrorContains(t, err, "platform")
}

func TestLoadBotConfig_RejectsUnknownCategory(t *testing.T) {
	cfg := config.DefaultBotConfig()
	cfg.DataCollection.MarketData.Categories = append(cfg.DataCollection.MarketData.Categories, "meme_stocks")

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	_, err = config.LoadBotConfig(writeConfig(t, string(data)))
	assert.ErrorContains(t, err, "meme_stocks")
}

func TestLoadBotConfig_RejectsBadPostTime(t *testing.T) {
	cfg := config.DefaultBotConfig()
	cfg.Blog.PostTime.Evening = "25:99"

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	_, err = config.LoadBotConfig(writeConfig(t, string(data)))
	assert.ErrorContains(t, err, "post_time")
}

func TestParsePostTime(t *testing.T) {
	d, err := config.ParsePostTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, "8h30m0s", d.String())

	_, err = config.ParsePostTime("8:3:1")
	assert.Error(t, err)
}
