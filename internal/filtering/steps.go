package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/jobposting"
	"github.com/spigell/resume-tailor/internal/logger"
)

const (
	forceFlagSetMsg = "force flag is set"
	// historyScanLimit bounds how many past records are checked for already optimized postings.
	historyScanLimit = 1000
)

type emptyDescriptionFilter struct{}

// NewEmptyDescription creates a filter that removes postings without a description.
// There is nothing to tailor a resume against in them.
func NewEmptyDescription() Filter {
	return &emptyDescriptionFilter{}
}

func (f *emptyDescriptionFilter) Name() string { return "empty_description" }

func (f *emptyDescriptionFilter) Disable(string) {}

func (f *emptyDescriptionFilter) IsEnabled() bool { return true }

func (f *emptyDescriptionFilter) Apply(_ context.Context, deps Deps, postings []*jobposting.Posting) ([]*jobposting.Posting, Step, error) {
	left, dropped := keep(postings, func(p *jobposting.Posting) bool {
		return strings.TrimSpace(p.Description) == ""
	})
	if len(dropped) > 0 {
		logger.OrNop(deps.Logger).Warn("excluding postings without description",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", len(left)),
		)
	}
	return left, step(len(postings), left), nil
}

type duplicatesFilter struct{}

// NewDuplicates creates a filter that keeps only the first posting for each URL.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(string) {}

func (f *duplicatesFilter) IsEnabled() bool { return true }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, postings []*jobposting.Posting) ([]*jobposting.Posting, Step, error) {
	seen := make(map[string]struct{}, len(postings))
	left, dropped := keep(postings, func(p *jobposting.Posting) bool {
		key := strings.TrimSpace(p.URL)
		if key == "" {
			return false
		}
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		return false
	})
	if len(dropped) > 0 {
		logger.OrNop(deps.Logger).Info("excluding duplicated postings",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", len(left)),
		)
	}
	return left, step(len(postings), left), nil
}

type companiesFilter struct {
	companies []string
}

// NewExcludedCompanies creates a filter that removes postings by companies, compared case-insensitively.
func NewExcludedCompanies(companies []string) Filter {
	normalized := make([]string, 0, len(companies))
	for _, c := range companies {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			normalized = append(normalized, c)
		}
	}
	return &companiesFilter{companies: normalized}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Apply(_ context.Context, deps Deps, postings []*jobposting.Posting) ([]*jobposting.Posting, Step, error) {
	if len(f.companies) == 0 {
		return postings, step(len(postings), postings), nil
	}

	left, dropped := keep(postings, func(p *jobposting.Posting) bool {
		company := strings.ToLower(strings.TrimSpace(p.Company))
		for _, excluded := range f.companies {
			if company == excluded {
				return true
			}
		}
		return false
	})
	if len(dropped) > 0 {
		logger.OrNop(deps.Logger).Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", len(left)),
		)
	}
	return left, step(len(postings), left), nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type optimizedFilter struct {
	disabled bool
	reason   string
}

// NewAlreadyOptimized creates a filter that removes postings whose URL is already in the history.
func NewAlreadyOptimized(force bool) Filter {
	f := &optimizedFilter{}
	if force {
		f.Disable(forceFlagSetMsg)
	}
	return f
}

func (f *optimizedFilter) Name() string { return "already_optimized" }

func (f *optimizedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *optimizedFilter) IsEnabled() bool { return !f.disabled }

func (f *optimizedFilter) Apply(ctx context.Context, deps Deps, postings []*jobposting.Posting) ([]*jobposting.Posting, Step, error) {
	if deps.History == nil {
		return postings, Step{}, fmt.Errorf("history store is required")
	}

	records, err := deps.History.List(ctx, historyScanLimit)
	if err != nil {
		return postings, Step{}, fmt.Errorf("listing history: %w", err)
	}

	done := make(map[string]string, len(records))
	for _, r := range records {
		if url := strings.TrimSpace(r.JobURL); url != "" {
			if _, ok := done[url]; !ok {
				done[url] = r.ID
			}
		}
	}

	log := logger.OrNop(deps.Logger)
	left, _ := keep(postings, func(p *jobposting.Posting) bool {
		id, ok := done[strings.TrimSpace(p.URL)]
		if ok {
			log.Info("excluding already optimized posting",
				zap.String(logger.FieldJobURL, p.URL),
				zap.String("history_id", id),
				zap.String("hint", "use --force to optimize it again"),
			)
		}
		return ok
	})
	return left, step(len(postings), left), nil
}

func (f *optimizedFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"exclude_optimized": strconv.FormatBool(!f.disabled)},
	}
}
