package analyzer

import (
	"fmt"
	"strings"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

const commentarySystemPrompt = `당신은 환율 전문 블로거입니다. 원/달러 환율 데이터와 시장 지표, 뉴스 헤드라인을 바탕으로
출퇴근길 독자가 3분 안에 읽을 수 있는 환율 분석 글을 작성합니다.
번호가 붙은 소제목(1. 2. 3.)으로 구성하고, 마크다운 강조 기호는 사용하지 마세요.`

const refineSystemPrompt = `다음 환율 분석 글을 다듬어 주세요. 내용과 구조는 유지하되 반복되는 표현을 정리하고
문장을 자연스럽게 만드세요. 다듬은 글만 출력하세요.`

const titleSystemPrompt = `환율 분석 글의 제목을 한 줄로 지어 주세요. 30자 이내, 따옴표 없이 제목만 출력하세요.`

func buildCommentaryPrompt(quote domain.Quote, market domain.MarketSnapshot, news []domain.NewsItem) string {
	var sb strings.Builder

	sb.WriteString("## 환율 데이터\n")
	fmt.Fprintf(&sb, "원/달러 환율: %.2f원, 전일 대비 %+.2f원 (%+.2f%%)\n\n", quote.Close, quote.Change, quote.ChangePercent)

	if len(market.Indices) > 0 {
		sb.WriteString("## 주요 지수\n")
		for _, idx := range market.Indices {
			fmt.Fprintf(&sb, "- %s: %.2f (%+.2f%%)\n", idx.Ticker, idx.Close, idx.ChangePercent)
		}
		sb.WriteString("\n")
	}

	for _, category := range []string{"gainers", "losers", "most_active", "top_etfs"} {
		movers := market.Categories[category]
		if len(movers) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n", categoryLabel(category))
		for _, m := range movers {
			fmt.Fprintf(&sb, "- %s (%s): %.2f (%+.2f%%)\n", m.Name, m.Symbol, m.Price, m.ChangePercent)
		}
		sb.WriteString("\n")
	}

	if len(news) > 0 {
		sb.WriteString("## 뉴스 헤드라인\n")
		for _, item := range news {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", item.Importance, item.Source, item.Title)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("위 데이터를 바탕으로 환율 분석 글을 작성해 주세요.")
	return sb.String()
}

func buildTitlePrompt(commentary string, quote domain.Quote) string {
	return fmt.Sprintf("환율: %.2f원 (%+.2f%%)\n\n%s", quote.Close, quote.ChangePercent, commentary)
}

func categoryLabel(category string) string {
	switch category {
	case "gainers":
		return "급등주"
	case "losers":
		return "급락주"
	case "most_active":
		return "거래량 상위"
	case "top_etfs":
		return "주요 ETF"
	default:
		return category
	}
}
