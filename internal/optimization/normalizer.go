package optimization

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/logger"
)

// Shape is the variant of a raw model response, decided once at the normalization boundary.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeResult
	ShapeSingleSuggestion
)

func (s Shape) String() string {
	switch s {
	case ShapeResult:
		return "result"
	case ShapeSingleSuggestion:
		return "single_suggestion"
	default:
		return "invalid"
	}
}

// Classify reports which variant raw is. Objects carrying section, current and suggested
// directly, without a suggestions list, are a single suggestion.
func Classify(raw any) (map[string]any, Shape) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return nil, ShapeInvalid
	}

	if _, nested := asList(obj["suggestions"]); !nested && hasKeys(obj, "section", "current", "suggested") {
		return obj, ShapeSingleSuggestion
	}
	return obj, ShapeResult
}

// Normalizer turns a parsed model response into a Result that always satisfies the minimum
// shape: five suggestions, a score in [75, 90], five keywords each way and a real summary.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil logger disables logging.
func NewNormalizer(log *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger.OrNop(log)}
}

// Normalize is a shortcut for a Normalizer without logging.
func Normalize(raw any) (*Result, error) {
	return NewNormalizer(nil).Normalize(raw)
}

// Normalize repairs raw into a Result. It only fails when raw is not an object.
func (n *Normalizer) Normalize(raw any) (*Result, error) {
	obj, shape := Classify(raw)

	switch shape {
	case ShapeSingleSuggestion:
		n.logger.Debug("model returned a single suggestion; using defaults for the rest of the result")
		return &Result{
			Suggestions:     []Suggestion{suggestionFrom(obj)},
			OverallScore:    DefaultScore,
			KeywordMatches:  copyStrings(defaultKeywordMatches),
			MissingKeywords: copyStrings(defaultMissingKeywords),
			Summary:         singleSuggestionSummary,
		}, nil
	case ShapeResult:
	default:
		return nil, &InputError{Kind: describe(raw)}
	}

	var repairs []string

	suggestions := suggestionsFrom(obj["suggestions"])

	score, ok := scoreFrom(obj["overallScore"])
	if !ok {
		repairs = append(repairs, "overallScore")
	}

	matches, ok := keywordsFrom(obj["keywordMatches"], defaultKeywordMatches)
	if !ok {
		repairs = append(repairs, "keywordMatches")
	}

	missing, ok := keywordsFrom(obj["missingKeywords"], defaultMissingKeywords)
	if !ok {
		repairs = append(repairs, "missingKeywords")
	}

	summary, ok := summaryFrom(obj["summary"])
	if !ok {
		repairs = append(repairs, "summary")
	}

	fromModel := len(suggestions)
	for i := 0; len(suggestions) < MinSuggestions && i < len(fallbackSuggestions); i++ {
		suggestions = append(suggestions, fallbackSuggestions[i])
	}
	if padded := len(suggestions) - fromModel; padded > 0 {
		repairs = append(repairs, fmt.Sprintf("suggestions+%d", padded))
	}

	if len(repairs) > 0 {
		n.logger.Debug("normalized thin model response",
			zap.Strings("repaired_fields", repairs),
			zap.Int("model_suggestions", fromModel),
		)
	}

	return &Result{
		Suggestions:     suggestions,
		OverallScore:    score,
		KeywordMatches:  matches,
		MissingKeywords: missing,
		Summary:         summary,
	}, nil
}

func suggestionsFrom(v any) []Suggestion {
	items, _ := asList(v)
	suggestions := make([]Suggestion, 0, MinSuggestions)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		suggestions = append(suggestions, suggestionFrom(entry))
	}
	return suggestions
}

type rawSuggestion struct {
	Section   string `mapstructure:"section"`
	Current   string `mapstructure:"current"`
	Suggested string `mapstructure:"suggested"`
	Reason    string `mapstructure:"reason"`
	Priority  string `mapstructure:"priority"`
}

// suggestionFrom fills every field of a suggestion, serializing structured values such as the
// education array into compact JSON strings.
func suggestionFrom(entry map[string]any) Suggestion {
	var rs rawSuggestion
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringifyHook,
		WeaklyTypedInput: true,
		Result:           &rs,
	})
	if err == nil {
		err = decoder.Decode(entry)
	}
	if err != nil {
		rs = rawSuggestion{
			Section:   coerceString(entry["section"]),
			Current:   coerceString(entry["current"]),
			Suggested: coerceString(entry["suggested"]),
			Reason:    coerceString(entry["reason"]),
			Priority:  coerceString(entry["priority"]),
		}
	}

	s := Suggestion{
		Section:   strings.TrimSpace(rs.Section),
		Current:   strings.TrimSpace(rs.Current),
		Suggested: strings.TrimSpace(rs.Suggested),
		Reason:    strings.TrimSpace(rs.Reason),
	}
	if s.Section == "" {
		s.Section = defaultSection
	}
	if s.Current == "" {
		s.Current = defaultCurrent
	}
	if s.Suggested == "" {
		s.Suggested = s.Current
	}
	if s.Reason == "" {
		s.Reason = defaultReason
	}
	if p, ok := ParsePriority(rs.Priority); ok {
		s.Priority = p
	} else {
		s.Priority = PriorityMedium
	}
	return s
}

func stringifyHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	return coerceString(data), nil
}

func scoreFrom(v any) (int, bool) {
	f, ok := coerceFloat(v)
	if !ok || f < MinScore || f > MaxScore {
		return DefaultScore, false
	}
	return int(math.Round(f)), true
}

func keywordsFrom(v any, fallback []string) ([]string, bool) {
	items, ok := asList(v)
	if !ok || len(items) < MinKeywords {
		return copyStrings(fallback), false
	}

	// The list is accepted on its length alone; entries are kept as they are, blanks included.
	keywords := make([]string, 0, len(items))
	for _, item := range items {
		keywords = append(keywords, coerceString(item))
	}
	return keywords, true
}

func summaryFrom(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || len([]rune(s)) <= MinSummaryLength {
		return defaultSummary, false
	}
	return s, true
}

func asList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return items, true
	case []map[string]any:
		items := make([]any, len(val))
		for i, m := range val {
			items[i] = m
		}
		return items, true
	default:
		return nil, false
	}
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	return true
}

func coerceFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func describe(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case []any, []string, []map[string]any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case map[string]any:
		return "null object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
