package jobposting

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaces     = regexp.MustCompile(`[ \t\p{Zs}]+`)
)

// ToMarkdown converts an HTML fragment to markdown. Plain text passes through unchanged
// apart from whitespace cleanup.
func ToMarkdown(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	if !strings.Contains(html, "<") {
		return cleanText(html)
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return cleanText(htmlText(html))
	}
	return blankLines.ReplaceAllString(strings.TrimSpace(md), "\n\n")
}

func htmlText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}

// cleanText collapses runs of spaces and drops empty lines.
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	clean := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line != "" {
			clean = append(clean, line)
		}
	}
	return strings.Join(clean, "\n")
}
