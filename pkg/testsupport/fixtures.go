package testsupport

import (
	"os"
	"testing"
)

// LoadFixture reads a testdata file.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MustFixture reads a testdata file as a string, failing tb on error.
func MustFixture(tb testing.TB, path string) string {
	tb.Helper()
	data, err := LoadFixture(path)
	if err != nil {
		tb.Fatalf("load fixture %s: %v", path, err)
	}
	return string(data)
}
