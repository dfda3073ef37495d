package jobposting

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// minOpenGraphDescription is the shortest og:description taken as a full posting. Shorter
// ones are teasers and the readable strategy should supply the text.
const minOpenGraphDescription = 200

type openGraphStrategy struct{}

func (openGraphStrategy) Name() string { return SourceOpenGraph }

func (openGraphStrategy) Extract(doc *goquery.Document, _ string) *Posting {
	posting := &Posting{
		URL:     metaContent(doc, `meta[property="og:url"]`),
		Title:   metaContent(doc, `meta[property="og:title"]`),
		Company: metaContent(doc, `meta[property="og:site_name"]`),
	}
	if posting.Title == "" {
		posting.Title = cleanText(doc.Find("title").First().Text())
	}

	description := metaContent(doc, `meta[property="og:description"]`)
	if description == "" {
		description = metaContent(doc, `meta[name="description"]`)
	}
	if utf8.RuneCountInString(description) >= minOpenGraphDescription {
		posting.Description = cleanText(description)
	}

	if posting.Title == "" && posting.Company == "" && posting.Description == "" {
		return nil
	}
	return posting
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
