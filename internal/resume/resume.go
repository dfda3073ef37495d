// Package resume loads the candidate resume that is tailored against job postings.
package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Experience struct {
	Company    string   `json:"company" yaml:"company" validate:"required"`
	Role       string   `json:"role" yaml:"role" validate:"required"`
	Start      string   `json:"start,omitempty" yaml:"start"`
	End        string   `json:"end,omitempty" yaml:"end"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights" validate:"dive,required"`
}

type Education struct {
	Institution string `json:"institution" yaml:"institution" validate:"required"`
	Degree      string `json:"degree,omitempty" yaml:"degree"`
	Field       string `json:"field,omitempty" yaml:"field"`
	Year        string `json:"year,omitempty" yaml:"year"`
}

type Resume struct {
	Name       string       `json:"name" yaml:"name" validate:"required"`
	Title      string       `json:"title,omitempty" yaml:"title"`
	Email      string       `json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	Summary    string       `json:"summary,omitempty" yaml:"summary"`
	Experience []Experience `json:"experience,omitempty" yaml:"experience" validate:"dive"`
	Skills     []string     `json:"skills,omitempty" yaml:"skills" validate:"dive,required"`
	Education  []Education  `json:"education,omitempty" yaml:"education" validate:"dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads a resume from a JSON or YAML file. The format is picked by extension and
// files without a known extension are tried as JSON first.
func Load(path string) (*Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume %q: %w", path, err)
	}

	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = "json"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			format = "json"
		} else {
			format = "yaml"
		}
	}

	r, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("resume %q: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a resume in the given format ("json" or "yaml").
func Parse(data []byte, format string) (*Resume, error) {
	var r Resume

	switch format {
	case "json":
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported resume format %q", format)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate reports missing or malformed fields.
func (r *Resume) Validate() error {
	if r == nil {
		return errors.New("resume is required")
	}

	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s: %s", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("invalid resume: %s", strings.Join(problems, "; "))
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// Render formats the resume as the plain text block sent to the model. Education is
// embedded as a JSON array, so suggestions for it may carry serialized JSON.
func (r *Resume) Render() string {
	var b strings.Builder

	writeLine(&b, "Name", r.Name)
	writeLine(&b, "Title", r.Title)
	writeLine(&b, "Summary", r.Summary)

	if len(r.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, exp := range r.Experience {
			fmt.Fprintf(&b, "- %s at %s", exp.Role, exp.Company)
			if span := period(exp.Start, exp.End); span != "" {
				fmt.Fprintf(&b, " (%s)", span)
			}
			b.WriteString("\n")
			for _, h := range exp.Highlights {
				fmt.Fprintf(&b, "  - %s\n", strings.TrimSpace(h))
			}
		}
	}

	if len(r.Skills) > 0 {
		writeLine(&b, "Skills", strings.Join(r.Skills, ", "))
	}

	if len(r.Education) > 0 {
		// Marshalling plain string structs cannot fail.
		education, _ := json.Marshal(r.Education)
		writeLine(&b, "Education", string(education))
	}

	return strings.TrimSpace(b.String())
}

func writeLine(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func period(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " - present"
	case start == "":
		return end
	default:
		return start + " - " + end
	}
}
