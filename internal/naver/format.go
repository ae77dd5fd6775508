package naver

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const disclaimer = "본 포스팅은 자동화된 분석이며 투자 권유가 아닙니다. 투자 판단의 책임은 투자자 본인에게 있습니다."

// FormatContent converts plain commentary text into the blog's HTML layout:
// a date header, paragraphs with numbered or marked lines promoted to
// subheadings, quoted lines as blockquotes, and a disclaimer footer.
func FormatContent(commentary string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(`<div class="rate-post">`)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, `<p class="post-date">%s</p>`, now.Format("2006년 01월 02일 15:04"))
	sb.WriteString("\n")

	for _, line := range strings.Split(commentary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		escaped := html.EscapeString(line)
		switch {
		case isHeadingLine(line):
			fmt.Fprintf(&sb, "<h2>%s</h2>\n", escaped)
		case strings.HasPrefix(line, ">"):
			quoted := html.EscapeString(strings.TrimSpace(strings.TrimPrefix(line, ">")))
			fmt.Fprintf(&sb, "<blockquote>%s</blockquote>\n", quoted)
		default:
			fmt.Fprintf(&sb, "<p>%s</p>\n", escaped)
		}
	}

	sb.WriteString("<hr>\n")
	fmt.Fprintf(&sb, `<p class="disclaimer">%s</p>`, disclaimer)
	sb.WriteString("\n</div>")
	return sb.String()
}

// isHeadingLine reports whether a commentary line reads as a section
// heading: numbered ("1. ..."), or prefixed with a marker character.
func isHeadingLine(line string) bool {
	if strings.HasPrefix(line, "■") || strings.HasPrefix(line, "▶") || strings.HasPrefix(line, "#") {
		return true
	}
	if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.' {
		return true
	}
	return false
}
