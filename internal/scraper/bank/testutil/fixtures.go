package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// LoadFixture reads an HTML fixture file captured from the given portal.
func LoadFixture(t *testing.T, app, name string) string {
	t.Helper()

	data, err := os.ReadFile(FixturePath(app, name))
	if err != nil {
		t.Fatalf("Failed to load fixture %s/%s: %v", app, name, err)
	}

	return string(data)
}

// FixturePath resolves bank/{app}/testdata/fixtures/{name}.html relative to
// this file.
func FixturePath(app, name string) string {
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename)) // up to bank/

	return filepath.Join(baseDir, app, "testdata", "fixtures", name+".html")
}
