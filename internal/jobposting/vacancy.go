package jobposting

import (
	"strings"

	"github.com/spigell/resume-tailor/internal/headhunter"
)

// FromVacancy maps an hh.ru vacancy onto a Posting, converting the HTML description.
func FromVacancy(v *headhunter.Vacancy) *Posting {
	if v == nil {
		return nil
	}

	return &Posting{
		URL:         v.AlternateURL,
		Title:       strings.TrimSpace(v.Name),
		Company:     strings.TrimSpace(v.Employer.Name),
		Location:    strings.TrimSpace(v.Area.Name),
		Salary:      v.SalaryText(),
		Description: ToMarkdown(v.Description),
		Skills:      v.SkillNames(),
		Source:      SourceHeadHunter,
	}
}
