package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertRanBefore checks that every producer name appears in calls before
// the consumer name.
func AssertRanBefore(t *testing.T, calls []string, consumer string, producers ...string) {
	t.Helper()

	ci := slices.Index(calls, consumer)
	require.GreaterOrEqual(t, ci, 0, "pass %q never ran; calls: %v", consumer, calls)
	for _, p := range producers {
		pi := slices.Index(calls, p)
		require.GreaterOrEqual(t, pi, 0, "pass %q never ran; calls: %v", p, calls)
		require.Less(t, pi, ci, "pass %q ran after its consumer %q; calls: %v", p, consumer, calls)
	}
}
