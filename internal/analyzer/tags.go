package analyzer

import (
	"strings"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// baseTags appear on every post.
var baseTags = []string{"환율", "달러환율", "원달러환율", "환테크", "경제", "재테크"}

// macroTags maps commentary keywords onto topic tags.
var macroTags = []struct {
	keyword string
	tag     string
}{
	{"금리", "금리"},
	{"연준", "연준"},
	{"fed", "연준"},
	{"인플레이션", "인플레이션"},
	{"물가", "물가"},
	{"관세", "관세"},
	{"무역", "무역"},
	{"증시", "증시"},
	{"수출", "수출"},
}

// categoryTags maps screener categories onto tags, added when the
// category contributed data.
var categoryTags = map[string]string{
	"gainers":     "급등주",
	"losers":      "급락주",
	"most_active": "거래량상위",
	"top_etfs":    "ETF",
}

const maxSymbolTagLen = 5

// GenerateTags builds the post tag list: base tags, macro keywords found
// in the commentary, short uppercase mover symbols, and category tags.
// Order is deterministic and duplicates are dropped; the result is capped
// at limit.
func GenerateTags(commentary string, market domain.MarketSnapshot, limit int) []string {
	lower := strings.ToLower(commentary)

	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, tag := range baseTags {
		add(tag)
	}

	for _, mt := range macroTags {
		if strings.Contains(lower, mt.keyword) {
			add(mt.tag)
		}
	}

	for _, category := range []string{"gainers", "losers", "most_active", "top_etfs"} {
		movers := market.Categories[category]
		if len(movers) == 0 {
			continue
		}
		add(categoryTags[category])
		for _, m := range movers {
			if isSymbolTag(m.Symbol) {
				add(m.Symbol)
			}
		}
	}

	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

// isSymbolTag accepts short all-uppercase ASCII tickers; option-style and
// dotted symbols stay out of the tag list.
func isSymbolTag(symbol string) bool {
	if symbol == "" || len(symbol) > maxSymbolTagLen {
		return false
	}
	for _, r := range symbol {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
