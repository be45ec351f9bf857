// Package testutil provides shared test infrastructure for the hector runtime.
// It holds the golden model dataset, fixture paths and assertion helpers used by
// the sim test packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

// GoldenDataset represents the structure of testdata/golden.yaml.
type GoldenDataset struct {
	Tests []GoldenTestCase `yaml:"tests"`
}

// GoldenTestCase is one model run and the final values it must produce.
type GoldenTestCase struct {
	Name   string         `yaml:"name"`
	Model  string         `yaml:"model"` // file under testdata/models/
	RelTol float64        `yaml:"rel_tol"`
	Expect []GoldenExpect `yaml:"expect"`
}

// GoldenExpect is the expected value of one variable at the end of the run.
type GoldenExpect struct {
	Component string   `yaml:"component"`
	Variable  string   `yaml:"variable"`
	Date      *float64 `yaml:"date"` // nil for date-independent variables
	Want      float64  `yaml:"want"`
}

// repoRoot resolves the repository root relative to this source file:
// sim/internal/testutil/ → ../../..
func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	path := filepath.Join(repoRoot(t), "testdata", "golden.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// ModelPath returns the path of a model file under testdata/models/.
func ModelPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(repoRoot(t), "testdata", "models", name)
}

// WriteTempYAML writes content to a fresh file in a test temp dir and returns its path.
func WriteTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
