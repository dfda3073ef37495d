package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy is one self-contained way of locating a JSON object inside free text.
type Strategy interface {
	Name() string
	Extract(text string) (map[string]any, bool)
}

var (
	fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?((?s:.*?))(?:```|\\z)")
	bracePattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// DefaultStrategies returns the cascade in the order it must run: cheap and specific first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		directStrategy{},
		fencedStrategy{},
		braceRegionStrategy{},
		lineAccumulationStrategy{},
		balancedSliceStrategy{},
	}
}

type directStrategy struct{}

func (directStrategy) Name() string { return "direct" }

func (directStrategy) Extract(text string) (map[string]any, bool) {
	return parseObject(text)
}

type fencedStrategy struct{}

func (fencedStrategy) Name() string { return "fenced" }

func (fencedStrategy) Extract(text string) (map[string]any, bool) {
	for _, loc := range fencePattern.FindAllStringSubmatchIndex(text, -1) {
		candidate := strings.TrimSpace(text[loc[2]:loc[3]])
		if candidate == "" {
			continue
		}

		if open := strings.Count(candidate, "{") - strings.Count(candidate, "}"); open > 0 {
			candidate = completeFromTail(candidate, text[loc[1]:], open)
		}

		if obj, ok := parseObject(candidate); ok {
			return obj, true
		}
	}
	return nil, false
}

// completeFromTail appends characters from rest to candidate one at a time until the
// open brace counter returns to zero or rest is exhausted.
func completeFromTail(candidate, rest string, open int) string {
	var b strings.Builder
	b.Grow(len(candidate) + len(rest))
	b.WriteString(candidate)

	for _, r := range rest {
		b.WriteRune(r)
		switch r {
		case '{':
			open++
		case '}':
			open--
		}
		if open == 0 {
			break
		}
	}
	return b.String()
}

type braceRegionStrategy struct{}

func (braceRegionStrategy) Name() string { return "brace_region" }

func (braceRegionStrategy) Extract(text string) (map[string]any, bool) {
	for _, span := range bracePattern.FindAllString(text, -1) {
		if obj, ok := parseObject(span); ok {
			return obj, true
		}
	}
	return nil, false
}

type lineAccumulationStrategy struct{}

func (lineAccumulationStrategy) Name() string { return "line_accumulation" }

func (lineAccumulationStrategy) Extract(text string) (map[string]any, bool) {
	var (
		buf        strings.Builder
		depth      int
		collecting bool
	)

	for _, line := range strings.Split(text, "\n") {
		if !collecting {
			if !strings.Contains(line, "{") {
				continue
			}
			collecting = true
			depth = 0
			buf.Reset()
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		switch {
		case depth == 0:
			candidate := strings.TrimSpace(buf.String())
			if strings.HasPrefix(candidate, "{") {
				if obj, ok := parseObject(candidate); ok {
					return obj, true
				}
			}
			collecting = false
		case depth < 0:
			collecting = false
		}
	}
	return nil, false
}

type balancedSliceStrategy struct{}

func (balancedSliceStrategy) Name() string { return "balanced_slice" }

func (balancedSliceStrategy) Extract(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return parseObject(text[start : i+1])
		}
	}
	return nil, false
}

// parseObject accepts only candidates that decode to a JSON object.
func parseObject(candidate string) (map[string]any, bool) {
	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
