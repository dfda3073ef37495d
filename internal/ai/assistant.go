package ai

import (
	"context"
	"errors"

	"github.com/spigell/resume-tailor/internal/jobposting"
	"github.com/spigell/resume-tailor/internal/optimization"
	"github.com/spigell/resume-tailor/internal/resume"
)

// ErrOptimizationFailed is returned when the model answered but no usable result could be
// recovered from the answer. Callers show a generic message and do not retry.
var ErrOptimizationFailed = errors.New("failed to optimize resume, please try again later")

// Optimization is the outcome for one resume and job posting pair.
type Optimization struct {
	Result *optimization.Result
	// Raw is the model text the result was recovered from.
	Raw   string
	Model string
	// Strategy names the extraction strategy that recovered Raw.
	Strategy string
}

type Optimizer interface {
	Optimize(ctx context.Context, r *resume.Resume, posting *jobposting.Posting) (*Optimization, error)
}
