package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/resume-tailor/internal/ai"
	"github.com/spigell/resume-tailor/internal/history"
	"github.com/spigell/resume-tailor/internal/jobposting"
	"github.com/spigell/resume-tailor/internal/optimization"
)

// outcome is the optimization of one posting. Exactly one of Optimization and Err is set.
type outcome struct {
	Posting      *jobposting.Posting
	Optimization *ai.Optimization
	Record       *history.Record
	Err          error
}

type report struct {
	ID       string               `json:"id,omitempty"`
	JobURL   string               `json:"jobUrl,omitempty"`
	JobTitle string               `json:"jobTitle,omitempty"`
	Company  string               `json:"company,omitempty"`
	Model    string               `json:"model,omitempty"`
	Strategy string               `json:"strategy,omitempty"`
	Error    string               `json:"error,omitempty"`
	Result   *optimization.Result `json:"result,omitempty"`
}

func (o *outcome) label() string {
	if o.Posting == nil {
		return "unknown posting"
	}
	return o.Posting.Label()
}

func (o *outcome) report() report {
	r := report{}
	if o.Posting != nil {
		r.JobURL = o.Posting.URL
		r.JobTitle = o.Posting.Title
		r.Company = o.Posting.Company
	}
	if o.Record != nil {
		r.ID = o.Record.ID
	}
	if o.Err != nil {
		r.Error = failureMessage(o.Err)
		return r
	}
	if o.Optimization != nil {
		r.Model = o.Optimization.Model
		r.Strategy = o.Optimization.Strategy
		r.Result = o.Optimization.Result
	}
	return r
}

// failureMessage hides the details of unusable model answers behind a generic message.
func failureMessage(err error) string {
	if errors.Is(err, ai.ErrOptimizationFailed) {
		return ai.ErrOptimizationFailed.Error()
	}
	return err.Error()
}

func recordReport(r *history.Record) report {
	result := r.Result
	return report{
		ID:       r.ID,
		JobURL:   r.JobURL,
		JobTitle: r.JobTitle,
		Company:  r.Company,
		Model:    r.Model,
		Strategy: r.Strategy,
		Result:   &result,
	}
}

func writeReports(w io.Writer, reports []report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func writeReportsFile(path string, reports []report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeReports(f, reports); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dumpReportsToTmpFile(reports []report) (string, error) {
	f, err := os.CreateTemp("", app+"-*.json")
	if err != nil {
		return "", err
	}
	if err := writeReports(f, reports); err != nil {
		f.Close()
		return "", err
	}
	return f.Name(), f.Close()
}

func writeSummary(w io.Writer, title string, r *optimization.Result) {
	fmt.Fprintln(w, title)
	if r == nil {
		fmt.Fprintln(w, "  no result")
		return
	}
	fmt.Fprintf(w, "  score: %d\n", r.OverallScore)
	fmt.Fprintf(w, "  summary: %s\n", r.Summary)
	fmt.Fprintf(w, "  matched keywords: %s\n", joinOrNone(r.KeywordMatches))
	fmt.Fprintf(w, "  missing keywords: %s\n", joinOrNone(r.MissingKeywords))
	fmt.Fprintf(w, "  suggestions: %d\n", len(r.Suggestions))
}

func writeSuggestions(w io.Writer, title string, r *optimization.Result) {
	fmt.Fprintln(w, title)
	if r == nil {
		fmt.Fprintln(w, "  no result")
		return
	}

	groups, order := r.BySection()
	for _, section := range order {
		fmt.Fprintf(w, "[%s]\n", section)
		for i, s := range groups[section] {
			fmt.Fprintf(w, "  %d. (%s) %s\n", i+1, s.Priority, s.Suggested)
			if s.Current != "" {
				fmt.Fprintf(w, "     current: %s\n", s.Current)
			}
			fmt.Fprintf(w, "     why: %s\n", s.Reason)
		}
	}
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
