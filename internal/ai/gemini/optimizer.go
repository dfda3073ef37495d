package gemini

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/ai"
	"github.com/spigell/resume-tailor/internal/extraction"
	"github.com/spigell/resume-tailor/internal/jobposting"
	"github.com/spigell/resume-tailor/internal/logger"
	"github.com/spigell/resume-tailor/internal/optimization"
	"github.com/spigell/resume-tailor/internal/resume"
	"github.com/spigell/resume-tailor/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

//go:embed system.md
var systemPrompt string

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	maxSingleLineRunes      = 200
	defaultTone             = "Professional"
	noneValue               = "none"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// PromptOverrides are user preferences injected into the prompt. Every value is reduced
// to plain single-line text before use.
type PromptOverrides struct {
	Tone             string `mapstructure:"tone"`
	FocusSections    string `mapstructure:"focus-sections"`
	ExtraKeywords    string `mapstructure:"extra-keywords"`
	UserInstructions string `mapstructure:"user-instructions"`
}

// Optimizer asks Gemini for suggestions and recovers a normalized result from the answer.
type Optimizer struct {
	generator  contentGenerator
	extractor  *extraction.Extractor
	normalizer *optimization.Normalizer
	overrides  PromptOverrides
	logger     *zap.Logger
	maxLogLen  int
}

var _ ai.Optimizer = (*Optimizer)(nil)

func NewOptimizer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Optimizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	log = logger.OrNop(log)
	return &Optimizer{
		generator:  generator,
		extractor:  extraction.New(log),
		normalizer: optimization.NewNormalizer(log),
		logger:     log,
		maxLogLen:  maxLogLength,
	}
}

func (o *Optimizer) SetPromptOverrides(overrides PromptOverrides) {
	o.overrides = overrides
}

func (o *Optimizer) Optimize(ctx context.Context, r *resume.Resume, posting *jobposting.Posting) (*ai.Optimization, error) {
	if r == nil {
		return nil, errors.New("resume is required")
	}
	if posting == nil {
		return nil, errors.New("job posting is required")
	}

	prompt := buildPrompt(r.Render(), posting.Render(), o.overrides)
	jobFields := logger.JobFields(posting.URL, posting.Title)

	o.logger.Debug("gemini generate content request", append(jobFields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, o.maxLogLen)),
	)...)

	raw, err := o.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("gemini generate content response", append(jobFields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, o.maxLogLen)),
	)...)

	parsed, strategy, err := o.extractor.ExtractNamed(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrOptimizationFailed, err)
	}

	result, err := o.normalizer.Normalize(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrOptimizationFailed, err)
	}

	o.logger.Debug("optimization result ready",
		append(jobFields, logger.ResultFields(strategy, result.OverallScore, len(result.Suggestions))...)...)

	return &ai.Optimization{
		Result:   result,
		Raw:      raw,
		Model:    o.generator.Model(),
		Strategy: strategy,
	}, nil
}

func buildPrompt(resumeText, postingText string, overrides PromptOverrides) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME}}\n\nJob posting:\n{{JOB_POSTING}}\n\nJSON Response:"
	}

	tone := sanitizeSingleLine(overrides.Tone)
	if tone == "" {
		tone = defaultTone
	}

	replacer := strings.NewReplacer(
		"{{TONE}}", tone,
		"{{FOCUS_SECTIONS}}", orNone(sanitizeList(overrides.FocusSections)),
		"{{EXTRA_KEYWORDS}}", orNone(sanitizeList(overrides.ExtraKeywords)),
		"{{USER_INSTRUCTIONS}}", formatUserInstructions(overrides.UserInstructions),
		"{{RESUME}}", resumeText,
		"{{JOB_POSTING}}", postingText,
	)
	return replacer.Replace(template)
}

// neutralize keeps user text from imitating prompt section headers such as [System].
func neutralize(s string) string {
	return strings.NewReplacer("[", "(", "]", ")", "{{", "(", "}}", ")").Replace(s)
}

func sanitizeSingleLine(s string) string {
	s = whitespaceRun.ReplaceAllString(neutralize(s), " ")
	return truncateRunes(strings.TrimSpace(s), maxSingleLineRunes)
}

// sanitizeList normalizes a comma separated list to "a, b, c".
func sanitizeList(s string) string {
	parts := strings.Split(sanitizeSingleLine(s), ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return strings.Join(items, ", ")
}

func formatUserInstructions(s string) string {
	s = truncateRunes(strings.TrimSpace(neutralize(s)), maxUserInstructionRunes)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - " + noneValue
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func orNone(s string) string {
	if s == "" {
		return noneValue
	}
	return s
}
