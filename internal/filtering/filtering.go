// Package filtering drops job postings that should not be sent to the model.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/history"
	"github.com/spigell/resume-tailor/internal/jobposting"
	"github.com/spigell/resume-tailor/internal/logger"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, postings []*jobposting.Posting) ([]*jobposting.Posting, Step, error)
}

// HistoryReader is the part of a history store the filters need.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]*history.Record, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	History HistoryReader
	Logger  *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the postings left.
func Run(ctx context.Context, deps Deps, steps []Filter, postings []*jobposting.Posting) ([]*jobposting.Posting, error) {
	log := logger.OrNop(deps.Logger)

	for _, step := range steps {
		if !step.IsEnabled() {
			log.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, postings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		postings = next
	}

	return postings, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(postings []*jobposting.Posting, drop func(*jobposting.Posting) bool) ([]*jobposting.Posting, []string) {
	kept := make([]*jobposting.Posting, 0, len(postings))
	var dropped []string
	for _, p := range postings {
		if p == nil || drop(p) {
			if p != nil {
				dropped = append(dropped, p.Label())
			}
			continue
		}
		kept = append(kept, p)
	}
	return kept, dropped
}

func step(initial int, left []*jobposting.Posting) Step {
	return Step{Initial: initial, Dropped: initial - len(left), Left: len(left)}
}
