package point

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetentionCutoff(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2026, 8, 31, 15, 42, 10, 0, loc)

	cutoff := RetentionCutoff(now, 7)
	require.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), cutoff)

	// truncation: any time of day maps to the same cutoff
	early := time.Date(2026, 8, 31, 0, 0, 1, 0, loc)
	require.Equal(t, cutoff, RetentionCutoff(early, 7))
}

func TestRetentionCutoff_ZeroDays(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), RetentionCutoff(now, 0))
}
