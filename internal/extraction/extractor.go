// Package extraction recovers a single JSON object from free-form model output that may be
// wrapped in prose, fenced as markdown, or cut off by a token limit.
package extraction

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/logger"
	"github.com/spigell/resume-tailor/internal/utils"
)

const excerptLength = 120

// Extractor runs an ordered cascade of strategies. The first strategy yielding an object wins.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New creates an Extractor with the default strategy cascade.
func New(log *zap.Logger) *Extractor {
	return NewWithStrategies(log, DefaultStrategies()...)
}

// NewWithStrategies creates an Extractor running the given strategies in order.
func NewWithStrategies(log *zap.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{
		strategies: strategies,
		logger:     logger.OrNop(log),
	}
}

// Extract returns the first JSON object recovered from text.
func Extract(text string) (map[string]any, error) {
	return New(nil).Extract(text)
}

// Extract returns the first JSON object recovered from text, or an *ExtractionError.
func (e *Extractor) Extract(text string) (map[string]any, error) {
	obj, _, err := e.ExtractNamed(text)
	return obj, err
}

// ExtractNamed is Extract that also reports which strategy succeeded.
func (e *Extractor) ExtractNamed(text string) (map[string]any, string, error) {
	if !strings.Contains(text, "{") {
		return nil, "", e.fail(text, "input contains no opening brace")
	}

	for _, strategy := range e.strategies {
		obj, ok := strategy.Extract(text)
		if !ok {
			e.logger.Debug("extraction strategy did not match", zap.String(logger.FieldStrategy, strategy.Name()))
			continue
		}

		e.logger.Debug("extraction strategy succeeded",
			zap.String(logger.FieldStrategy, strategy.Name()),
			zap.Int("keys", len(obj)),
		)
		return obj, strategy.Name(), nil
	}

	return nil, "", e.fail(text, "no strategy recovered a JSON object")
}

func (e *Extractor) fail(text, message string) error {
	err := &ExtractionError{
		Message: message,
		Head:    utils.TruncateForLog(text, excerptLength),
		Tail:    utils.Tail(text, excerptLength),
		Length:  utf8.RuneCountInString(text),
	}
	if err.Head == err.Tail || strings.HasSuffix(err.Head, err.Tail) {
		err.Tail = ""
	}

	e.logger.Warn("model response extraction failed",
		zap.String("reason", message),
		zap.Int("response_length", err.Length),
		zap.String("response_head", err.Head),
	)
	return err
}
