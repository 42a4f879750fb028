package testutil

import (
	"strings"
	"testing"

	"github.com/specialistvlad/learngrid/internal/availability"
	"github.com/stretchr/testify/require"
)

// AssertLogContains fails the test unless the captured log output contains
// substr.
func AssertLogContains(t *testing.T, result *HarnessResult, substr string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.LogOutput, substr),
		"expected log output to contain %q.\nFull Log:\n%s", substr, result.LogOutput,
	)
}

// AssertStatus finds id in results and checks its availability status.
func AssertStatus(t *testing.T, results []availability.Result, id string, want availability.Status) {
	t.Helper()
	for _, r := range results {
		if r.Node.ID.String() == id {
			require.Equal(t, want, r.Status, "status of %s", id)
			return
		}
	}
	t.Fatalf("node %s not found in availability results", id)
}
