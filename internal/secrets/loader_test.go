package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api key", File: path, Value: "inline", Env: "TEST_SECRET"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadValueThenEnv(t *testing.T) {
	t.Setenv("TEST_SECRET", " from-env ")

	got, err := Load(Source{Value: "inline", Env: "TEST_SECRET"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline secret, got %q, %v", got, err)
	}

	got, err = Load(Source{Env: "TEST_SECRET"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env secret, got %q, %v", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("TEST_SECRET_EMPTY", "")

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "nothing", src: Source{Name: "token"}, want: "token is not configured"},
		{name: "empty env", src: Source{Name: "token", Env: "TEST_SECRET_EMPTY"}, want: "set TEST_SECRET_EMPTY"},
		{name: "empty file", src: Source{Name: "token", File: empty, Env: "TEST_SECRET_EMPTY"}, want: "is empty"},
		{name: "missing file", src: Source{File: filepath.Join(t.TempDir(), "missing")}, want: "reading secret"},
	}

	for _, tc := range cases {
		_, err := Load(tc.src)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}
