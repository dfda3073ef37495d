package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every package that logs about a model call or a job posting.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	// FieldStrategy names the extraction strategy that recovered a model response.
	FieldStrategy = "extraction_strategy"
	FieldJobURL   = "job_url"
	FieldJobTitle = "job_title"
)

// nonEmpty turns key/value pairs into string fields, skipping blank values.
func nonEmpty(pairs ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if value := strings.TrimSpace(pairs[i+1]); value != "" {
			fields = append(fields, zap.String(pairs[i], value))
		}
	}
	return fields
}

// AIFields describes the provider and model serving a request.
func AIFields(provider, model string) []zap.Field {
	return nonEmpty(FieldProvider, provider, FieldModel, model)
}

// ForModel returns l annotated with AIFields. A nil l yields a no-op logger.
func ForModel(l *zap.Logger, provider, model string) *zap.Logger {
	l = OrNop(l)
	if fields := AIFields(provider, model); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

// JobFields describes the job posting being processed.
func JobFields(url, title string) []zap.Field {
	return nonEmpty(FieldJobURL, url, FieldJobTitle, title)
}

// ResultFields summarizes a recovered optimization result.
func ResultFields(strategy string, score, suggestions int) []zap.Field {
	return append(nonEmpty(FieldStrategy, strategy),
		zap.Int("overall_score", score),
		zap.Int("suggestions", suggestions),
	)
}
