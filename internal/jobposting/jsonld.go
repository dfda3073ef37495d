package jobposting

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDStrategy reads schema.org JobPosting objects embedded as JSON-LD.
type jsonLDStrategy struct{}

func (jsonLDStrategy) Name() string { return SourceJSONLD }

func (jsonLDStrategy) Extract(doc *goquery.Document, _ string) *Posting {
	var posting *Posting

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return true
		}

		node := findJobPosting(data)
		if node == nil {
			return true
		}

		posting = &Posting{
			URL:         stringValue(node["url"]),
			Title:       cleanText(stringValue(node["title"])),
			Company:     organizationName(node["hiringOrganization"]),
			Location:    locationName(node["jobLocation"]),
			Description: ToMarkdown(stringValue(node["description"])),
			Skills:      skillList(node["skills"]),
		}
		return false
	})

	return posting
}

// findJobPosting walks objects, arrays and @graph containers looking for a JobPosting node.
func findJobPosting(data any) map[string]any {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if found := findJobPosting(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isType(v["@type"], "JobPosting") {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findJobPosting(graph)
		}
	}
	return nil
}

func isType(value any, want string) bool {
	switch v := value.(type) {
	case string:
		return strings.EqualFold(v, want)
	case []any:
		for _, item := range v {
			if isType(item, want) {
				return true
			}
		}
	}
	return false
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func organizationName(v any) string {
	switch org := v.(type) {
	case string:
		return strings.TrimSpace(org)
	case map[string]any:
		return stringValue(org["name"])
	case []any:
		if len(org) > 0 {
			return organizationName(org[0])
		}
	}
	return ""
}

func locationName(v any) string {
	switch loc := v.(type) {
	case string:
		return strings.TrimSpace(loc)
	case []any:
		names := make([]string, 0, len(loc))
		for _, item := range loc {
			if name := locationName(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, "; ")
	case map[string]any:
		address, ok := loc["address"].(map[string]any)
		if !ok {
			return stringValue(loc["name"])
		}
		parts := make([]string, 0, 3)
		for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
			part := stringValue(address[key])
			if part == "" {
				if nested, ok := address[key].(map[string]any); ok {
					part = stringValue(nested["name"])
				}
			}
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func skillList(v any) []string {
	var raw []string
	switch skills := v.(type) {
	case string:
		raw = strings.Split(skills, ",")
	case []any:
		for _, item := range skills {
			switch s := item.(type) {
			case string:
				raw = append(raw, s)
			case map[string]any:
				raw = append(raw, stringValue(s["name"]))
			}
		}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
