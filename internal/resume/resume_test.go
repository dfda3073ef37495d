package resume

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlResume = `
name: Jane Doe
title: Backend Engineer
email: jane@example.com
summary: Go engineer focused on distributed systems.
experience:
  - company: Acme
    role: Senior Engineer
    start: "2020"
    highlights:
      - Built the billing pipeline
      - Cut p99 latency by 40%
skills: [Go, PostgreSQL, Kubernetes]
education:
  - institution: MIT
    degree: BSc
    field: Computer Science
    year: 2015
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	r, err := Load(writeFile(t, "resume.yaml", yamlResume))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", r.Name)
	require.Len(t, r.Experience, 1)
	assert.Equal(t, []string{"Built the billing pipeline", "Cut p99 latency by 40%"}, r.Experience[0].Highlights)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes"}, r.Skills)
	require.Len(t, r.Education, 1)
	assert.Equal(t, "2015", r.Education[0].Year)
}

func TestLoadJSONWithoutExtension(t *testing.T) {
	r, err := Load(writeFile(t, "resume", `{"name":"Jane Doe","skills":["Go"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", r.Name)
	assert.Equal(t, []string{"Go"}, r.Skills)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseRejectsInvalidResume(t *testing.T) {
	_, err := Parse([]byte(`{"email":"not-an-email","experience":[{"company":"Acme"}]}`), "json")
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "name: required")
	assert.Contains(t, msg, "email: email")
	assert.Contains(t, msg, "experience[0].role: required")
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte(`name = "x"`), "toml")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	r, err := Parse([]byte(yamlResume), "yaml")
	require.NoError(t, err)

	out := r.Render()
	assert.True(t, strings.HasPrefix(out, "Name: Jane Doe\nTitle: Backend Engineer\n"))
	assert.Contains(t, out, "- Senior Engineer at Acme (2020 - present)\n  - Built the billing pipeline\n")
	assert.Contains(t, out, "Skills: Go, PostgreSQL, Kubernetes")
	assert.Contains(t, out, `Education: [{"institution":"MIT","degree":"BSc","field":"Computer Science","year":"2015"}]`)
	assert.NotContains(t, out, "jane@example.com")
}

func TestRenderSkipsEmptySections(t *testing.T) {
	r := &Resume{Name: "Jane Doe"}
	assert.Equal(t, "Name: Jane Doe", r.Render())
}
