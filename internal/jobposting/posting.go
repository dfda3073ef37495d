// Package jobposting turns job posting pages, hh.ru vacancies and local files into a Posting
// that can be sent to the model next to the resume.
package jobposting

import (
	"fmt"
	"strings"
)

const (
	SourceJSONLD     = "jsonld"
	SourceOpenGraph  = "opengraph"
	SourceReadable   = "readable"
	SourceHeadHunter = "headhunter"
	SourceFile       = "file"
)

// Posting is a job posting reduced to what matters for tailoring a resume.
type Posting struct {
	URL         string   `json:"url,omitempty"`
	Title       string   `json:"title,omitempty"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	Salary      string   `json:"salary,omitempty"`
	Description string   `json:"description"`
	Skills      []string `json:"skills,omitempty"`
	// Source names the strategy or backend the posting came from.
	Source string `json:"source,omitempty"`
}

// Render formats the posting as the plain text block sent to the model.
func (p *Posting) Render() string {
	var b strings.Builder

	for _, line := range [][2]string{
		{"Title", p.Title},
		{"Company", p.Company},
		{"Location", p.Location},
		{"Salary", p.Salary},
	} {
		if value := strings.TrimSpace(line[1]); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", line[0], value)
		}
	}

	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Key skills: %s\n", strings.Join(p.Skills, ", "))
	}

	if description := strings.TrimSpace(p.Description); description != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(description)
	}

	return strings.TrimSpace(b.String())
}

// Label is a short human readable name for logs and menus.
func (p *Posting) Label() string {
	switch {
	case p.Title != "" && p.Company != "":
		return p.Title + " @ " + p.Company
	case p.Title != "":
		return p.Title
	default:
		return p.URL
	}
}

// fill copies fields that are empty in p from other.
func (p *Posting) fill(other *Posting) {
	if other == nil {
		return
	}
	if p.URL == "" {
		p.URL = other.URL
	}
	if p.Title == "" {
		p.Title = other.Title
	}
	if p.Company == "" {
		p.Company = other.Company
	}
	if p.Location == "" {
		p.Location = other.Location
	}
	if p.Salary == "" {
		p.Salary = other.Salary
	}
	if p.Description == "" {
		p.Description = other.Description
	}
	if len(p.Skills) == 0 && len(other.Skills) > 0 {
		p.Skills = append([]string(nil), other.Skills...)
	}
}
