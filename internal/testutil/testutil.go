// Package testutil provides shared helpers for tests: testdata fixture
// loaders, a canonical user fixture, and small environment utilities.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"testlab/internal/model"
)

// LoadJSON reads testdata/<name> relative to the calling test's package
// directory and unmarshals it into v. It fails the test on any error.
func LoadJSON(t *testing.T, name string, v any) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", name, err)
	}
}

// LoadYAML is LoadJSON for YAML fixtures.
func LoadYAML(t *testing.T, name string, v any) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", name, err)
	}
}

// UserAlice returns the canonical user fixture used across the test suite.
// Callers get a fresh copy each time, so mutating the result in one test
// cannot leak into another.
func UserAlice() model.User {
	return model.User{
		ID:        "6f1c1b5e-8a4d-4bdc-9f6e-0a4c7f2d9b11",
		Name:      "Alice",
		Age:       30,
		Email:     "alice@example.com",
		CreatedAt: time.Date(2026, time.January, 15, 10, 30, 0, 0, time.UTC),
	}
}

// SetEnv sets an environment variable for the duration of a test and
// restores the previous value on cleanup.
func SetEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !had {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

// SkipIfShort skips long-running tests when the -short flag is used.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
