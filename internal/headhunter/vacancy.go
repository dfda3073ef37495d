package headhunter

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var vacancyPath = regexp.MustCompile(`^/vacanc(?:y|ies)/(\d+)/?$`)

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary *struct {
		From     int    `json:"from,omitempty"`
		To       int    `json:"to,omitempty"`
		Currency string `json:"currency,omitempty"`
		Gross    bool   `json:"gross,omitempty"`
	} `json:"salary,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Description  string `json:"description,omitempty"`
	KeySkills    []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// SkillNames returns the non-empty key skill names in API order.
func (va *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(va.KeySkills))
	for _, skill := range va.KeySkills {
		if name := strings.TrimSpace(skill.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// SalaryText formats the salary fork, e.g. "200000-300000 RUR". It is empty when unset.
func (va *Vacancy) SalaryText() string {
	if va.Salary == nil || (va.Salary.From == 0 && va.Salary.To == 0) {
		return ""
	}

	var fork string
	switch {
	case va.Salary.From != 0 && va.Salary.To != 0:
		fork = fmt.Sprintf("%d-%d", va.Salary.From, va.Salary.To)
	case va.Salary.From != 0:
		fork = fmt.Sprintf("from %d", va.Salary.From)
	default:
		fork = fmt.Sprintf("up to %d", va.Salary.To)
	}
	return strings.TrimSpace(fork + " " + va.Salary.Currency)
}

// VacancyIDFromURL extracts the vacancy id from hh.ru site or API links such as
// https://spb.hh.ru/vacancy/123?from=search or https://api.hh.ru/vacancies/123.
func VacancyIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	if !isHeadHunterHost(u.Hostname()) {
		return "", false
	}

	match := vacancyPath.FindStringSubmatch(u.Path)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func isHeadHunterHost(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range []string{"hh.ru", "hh.kz", "hh.uz", "headhunter.ge"} {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
