package jobposting

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var noiseSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "svg", "form",
	"header", "footer", "nav", "aside",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	".cookie-banner", ".advertisement", ".sidebar",
}, ", ")

const contentSelectors = "main, article, [role=main], .job-description, #job-description"

// readableStrategy takes the main content of the page with the page chrome removed.
type readableStrategy struct{}

func (readableStrategy) Name() string { return SourceReadable }

func (readableStrategy) Extract(doc *goquery.Document, _ string) *Posting {
	root := doc.Selection.Clone()
	root.Find(noiseSelectors).Remove()

	content := root.Find(contentSelectors).First()
	if content.Length() == 0 {
		content = root.Find("body")
	}
	if content.Length() == 0 {
		return nil
	}

	html, err := content.Html()
	if err != nil {
		return nil
	}

	posting := &Posting{
		Title:       cleanText(content.Find("h1").First().Text()),
		Description: ToMarkdown(html),
	}
	if posting.Title == "" {
		posting.Title = cleanText(doc.Find("title").First().Text())
	}
	if strings.TrimSpace(content.Text()) == "" {
		posting.Description = ""
	}
	if posting.Title == "" && posting.Description == "" {
		return nil
	}
	return posting
}
