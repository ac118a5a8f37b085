// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/banshee-data/beambeam/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertClose fails the test if got and want differ by more than tol.
func AssertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %g, want %g (tol %g)", name, got, want, tol)
	}
}

// QuietWarnings discards geometry warnings for the duration of the test and
// resets the warning counter.
func QuietWarnings(t *testing.T) {
	t.Helper()
	monitoring.SetWarnLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	monitoring.ResetWarningCount()
	t.Cleanup(func() { monitoring.SetWarnLogger(slog.Default()) })
}
