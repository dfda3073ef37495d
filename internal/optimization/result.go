// Package optimization holds the tailoring result model and the normalizer that repairs
// thin or malformed model output into a result satisfying the minimum shape guarantees.
package optimization

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	MinSuggestions = 5
	MinKeywords    = 5
	MinScore       = 75
	MaxScore       = 90
	DefaultScore   = 75
	// MinSummaryLength is exclusive: a summary must be longer than this.
	MinSummaryLength = 20
)

// ParsePriority maps free text onto a Priority. Unknown values report false.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	default:
		return "", false
	}
}

// Suggestion is one atomic recommendation for a resume section.
type Suggestion struct {
	Section   string   `json:"section"`
	Current   string   `json:"current"`
	Suggested string   `json:"suggested"`
	Reason    string   `json:"reason"`
	Priority  Priority `json:"priority"`
}

// Result is the structured outcome for one resume and job posting pair.
type Result struct {
	Suggestions     []Suggestion `json:"suggestions"`
	OverallScore    int          `json:"overallScore"`
	KeywordMatches  []string     `json:"keywordMatches"`
	MissingKeywords []string     `json:"missingKeywords"`
	Summary         string       `json:"summary"`
}

// BySection groups suggestions by section, keeping their relative order.
func (r *Result) BySection() (map[string][]Suggestion, []string) {
	groups := make(map[string][]Suggestion)
	var order []string
	for _, s := range r.Suggestions {
		if _, ok := groups[s.Section]; !ok {
			order = append(order, s.Section)
		}
		groups[s.Section] = append(groups[s.Section], s)
	}
	return groups, order
}

//go:embed schema.json
var resultSchema string

var (
	resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)
	singleSchemaLoader = singleSuggestionSchema()
)

// singleSuggestionSchema is the result schema with exactly one suggestion allowed.
func singleSuggestionSchema() gojsonschema.JSONLoader {
	var doc map[string]any
	if err := json.Unmarshal([]byte(resultSchema), &doc); err != nil {
		panic(fmt.Sprintf("optimization: decoding result schema: %v", err))
	}
	suggestions := doc["properties"].(map[string]any)["suggestions"].(map[string]any)
	suggestions["minItems"] = 1
	suggestions["maxItems"] = 1
	return gojsonschema.NewGoLoader(doc)
}

// Validate checks r against the result schema.
func (r *Result) Validate() error {
	return r.ValidateShape(ShapeResult)
}

// ValidateShape checks r against the schema for the shape the model answered with.
// A single suggestion answer normalizes to exactly one suggestion; everything else needs five.
func (r *Result) ValidateShape(shape Shape) error {
	if r == nil {
		return &SchemaError{Errors: []FieldError{{Field: "(root)", Message: "result is nil"}}}
	}

	loader := resultSchemaLoader
	if shape == ShapeSingleSuggestion {
		loader = singleSchemaLoader
	}

	res, err := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(r))
	if err != nil {
		return &SchemaError{Cause: err}
	}
	if res.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(res.Errors()))}
	for _, desc := range res.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}
