package optimization

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fullSuggestion(section string) map[string]any {
	return map[string]any{
		"section":   section,
		"current":   "Current " + section,
		"suggested": "Better " + section,
		"reason":    "Because " + section,
		"priority":  "high",
	}
}

func TestNormalizePadsSuggestionsAndKeepsPrefix(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		real int
	}{
		{name: "suggestions absent", raw: map[string]any{}, real: 0},
		{name: "suggestions not a list", raw: map[string]any{"suggestions": "none"}, real: 0},
		{name: "two suggestions", raw: map[string]any{"suggestions": []any{fullSuggestion("skills"), fullSuggestion("education")}}, real: 2},
		{name: "four suggestions", raw: map[string]any{"suggestions": []any{
			fullSuggestion("a"), fullSuggestion("b"), fullSuggestion("c"), fullSuggestion("d"),
		}}, real: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Normalize(tt.raw)
			require.NoError(t, err)
			require.Len(t, result.Suggestions, MinSuggestions)

			items, _ := tt.raw["suggestions"].([]any)
			for i := 0; i < tt.real; i++ {
				entry := items[i].(map[string]any)
				assert.Equal(t, entry["section"], result.Suggestions[i].Section)
				assert.Equal(t, entry["suggested"], result.Suggestions[i].Suggested)
			}
			for i := tt.real; i < MinSuggestions; i++ {
				assert.Equal(t, fallbackSuggestions[i-tt.real], result.Suggestions[i])
			}
		})
	}
}

func TestNormalizeKeepsLongSuggestionLists(t *testing.T) {
	items := make([]any, 0, 7)
	for i := 0; i < 7; i++ {
		items = append(items, fullSuggestion("experience"))
	}

	result, err := Normalize(map[string]any{"suggestions": items})
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 7)
}

func TestNormalizeFallbackOrder(t *testing.T) {
	result, err := Normalize(map[string]any{})
	require.NoError(t, err)

	sections := make([]string, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		sections = append(sections, s.Section)
	}
	assert.Equal(t, []string{"summary", "experience", "skills", "experience", "summary"}, sections)
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name  string
		score any
		want  int
	}{
		{name: "too low", score: float64(40), want: 75},
		{name: "too high", score: float64(99), want: 75},
		{name: "lower bound", score: float64(75), want: 75},
		{name: "upper bound", score: float64(90), want: 90},
		{name: "in range", score: float64(82), want: 82},
		{name: "fraction rounds", score: 86.6, want: 87},
		{name: "numeric string", score: "88", want: 88},
		{name: "json number", score: json.Number("80"), want: 80},
		{name: "not numeric", score: "great", want: 75},
		{name: "missing", score: nil, want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Normalize(map[string]any{"overallScore": tt.score})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.OverallScore)
		})
	}
}

func TestNormalizeKeywords(t *testing.T) {
	five := []any{"go", "kubernetes", "terraform", "grpc", "postgres"}

	result, err := Normalize(map[string]any{
		"keywordMatches":  []any{"go", "docker"},
		"missingKeywords": five,
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(result.KeywordMatches), MinKeywords)
	assert.Equal(t, defaultKeywordMatches, result.KeywordMatches)
	assert.Equal(t, []string{"go", "kubernetes", "terraform", "grpc", "postgres"}, result.MissingKeywords)
}

func TestNormalizeKeywordListsAcceptedByLength(t *testing.T) {
	tests := []struct {
		name  string
		input []any
		want  []string
	}{
		{
			name:  "blank entry keeps the list",
			input: []any{"go", "kubernetes", "grpc", "postgres", ""},
			want:  []string{"go", "kubernetes", "grpc", "postgres", ""},
		},
		{
			name:  "non-string entries are stringified",
			input: []any{"go", float64(12), true, "grpc", "postgres", "aws"},
			want:  []string{"go", "12", "true", "grpc", "postgres", "aws"},
		},
		{
			name:  "four entries fall back",
			input: []any{"go", "kubernetes", "grpc", "postgres"},
			want:  defaultKeywordMatches,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Normalize(map[string]any{"keywordMatches": tt.input})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.KeywordMatches)
			assert.NoError(t, result.Validate())
		})
	}
}

func TestNormalizeKeywordDefaultsDiffer(t *testing.T) {
	result, err := Normalize(map[string]any{})
	require.NoError(t, err)
	assert.NotEqual(t, result.KeywordMatches, result.MissingKeywords)
	assert.Len(t, result.KeywordMatches, MinKeywords)
	assert.Len(t, result.MissingKeywords, MinKeywords)
}

func TestNormalizeSummary(t *testing.T) {
	short, err := Normalize(map[string]any{"summary": "Too short."})
	require.NoError(t, err)
	assert.Equal(t, defaultSummary, short.Summary)

	exactly20, err := Normalize(map[string]any{"summary": "12345678901234567890"})
	require.NoError(t, err)
	assert.Equal(t, defaultSummary, exactly20.Summary)

	long, err := Normalize(map[string]any{"summary": "A reasonably detailed optimization summary."})
	require.NoError(t, err)
	assert.Equal(t, "A reasonably detailed optimization summary.", long.Summary)

	notString, err := Normalize(map[string]any{"summary": []any{"a"}})
	require.NoError(t, err)
	assert.Equal(t, defaultSummary, notString.Summary)
}

func TestNormalizeSingleSuggestionShape(t *testing.T) {
	raw := map[string]any{"section": "summary", "current": "x", "suggested": "y"}

	_, shape := Classify(raw)
	assert.Equal(t, ShapeSingleSuggestion, shape)

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, 75, result.OverallScore)
	assert.Equal(t, "summary", result.Suggestions[0].Section)
	assert.Equal(t, "x", result.Suggestions[0].Current)
	assert.Equal(t, "y", result.Suggestions[0].Suggested)
	assert.NotEmpty(t, result.Suggestions[0].Reason)
	assert.Equal(t, PriorityMedium, result.Suggestions[0].Priority)
	assert.Equal(t, defaultKeywordMatches, result.KeywordMatches)
	assert.Equal(t, defaultMissingKeywords, result.MissingKeywords)
	assert.Equal(t, singleSuggestionSummary, result.Summary)
}

func TestClassifyPrefersNestedSuggestions(t *testing.T) {
	raw := map[string]any{
		"section":     "summary",
		"current":     "x",
		"suggested":   "y",
		"suggestions": []any{fullSuggestion("skills")},
	}
	_, shape := Classify(raw)
	assert.Equal(t, ShapeResult, shape)
}

func TestNormalizeRejectsNonObjects(t *testing.T) {
	inputs := map[string]any{
		"null":   nil,
		"number": float64(42),
		"array":  []any{map[string]any{"section": "summary"}},
		"string": "suggestions",
		"bool":   true,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotObject))

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.NotEmpty(t, inputErr.Kind)
		})
	}
}

func TestNormalizeFillsSuggestionFields(t *testing.T) {
	raw := map[string]any{"suggestions": []any{
		map[string]any{
			"section": "education",
			"current": []any{map[string]any{"degree": "BSc", "year": float64(2015)}},
			"reason":  "",
		},
		map[string]any{"priority": "URGENT", "suggested": 12.5},
		"not an object",
	}}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Suggestions, MinSuggestions)

	education := result.Suggestions[0]
	assert.Equal(t, "education", education.Section)
	assert.JSONEq(t, `[{"degree":"BSc","year":2015}]`, education.Current)
	assert.Equal(t, education.Current, education.Suggested)
	assert.Equal(t, defaultReason, education.Reason)
	assert.Equal(t, PriorityMedium, education.Priority)

	second := result.Suggestions[1]
	assert.Equal(t, defaultSection, second.Section)
	assert.Equal(t, defaultCurrent, second.Current)
	assert.Equal(t, "12.5", second.Suggested)
	assert.Equal(t, PriorityMedium, second.Priority)

	assert.Equal(t, fallbackSuggestions[0], result.Suggestions[2])

	for _, s := range result.Suggestions {
		assert.NotEmpty(t, s.Section)
		assert.NotEmpty(t, s.Current)
		assert.NotEmpty(t, s.Suggested)
		assert.NotEmpty(t, s.Reason)
		assert.NotEmpty(t, s.Priority)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := map[string]any{
		"suggestions":    []any{fullSuggestion("skills")},
		"overallScore":   float64(99),
		"keywordMatches": []any{"a"},
		"summary":        "short",
	}

	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeDoesNotShareFallbacks(t *testing.T) {
	first, err := Normalize(map[string]any{})
	require.NoError(t, err)
	first.KeywordMatches[0] = "mutated"
	first.Suggestions[0].Suggested = "mutated"

	second, err := Normalize(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "communication", second.KeywordMatches[0])
	assert.NotEqual(t, "mutated", second.Suggestions[0].Suggested)
}

func TestNormalizerLogsRepairs(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	n := NewNormalizer(zap.New(core))

	_, err := n.Normalize(map[string]any{"overallScore": float64(10)})
	require.NoError(t, err)

	entries := observed.FilterMessage("normalized thin model response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(0), entries[0].ContextMap()["model_suggestions"])
}

func TestNormalizedResultPassesSchema(t *testing.T) {
	result, err := Normalize(map[string]any{"suggestions": []any{fullSuggestion("skills")}})
	require.NoError(t, err)
	require.NoError(t, result.Validate())
}

func TestValidateShapeSingleSuggestion(t *testing.T) {
	raw := map[string]any{"section": "summary", "current": "x", "suggested": "y"}
	_, shape := Classify(raw)
	require.Equal(t, ShapeSingleSuggestion, shape)

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)

	assert.NoError(t, result.ValidateShape(shape))
	assert.Error(t, result.Validate(), "a full result still needs five suggestions")

	padded, err := Normalize(map[string]any{})
	require.NoError(t, err)
	assert.Error(t, padded.ValidateShape(ShapeSingleSuggestion), "single shape allows exactly one suggestion")
}

func TestValidateReportsViolations(t *testing.T) {
	result := &Result{
		Suggestions:     []Suggestion{{Section: "summary", Current: "a", Suggested: "b", Reason: "c", Priority: "urgent"}},
		OverallScore:    99,
		KeywordMatches:  []string{"a"},
		MissingKeywords: []string{},
		Summary:         "short",
	}

	err := result.Validate()
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.NotEmpty(t, schemaErr.Errors)
	assert.Contains(t, err.Error(), "overallScore")
}

func TestBySection(t *testing.T) {
	result, err := Normalize(map[string]any{})
	require.NoError(t, err)

	groups, order := result.BySection()
	assert.Equal(t, []string{"summary", "experience", "skills"}, order)
	assert.Len(t, groups["summary"], 2)
	assert.Len(t, groups["experience"], 2)
	assert.Len(t, groups["skills"], 1)
}
