package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"04:00", 4, 0, true},
		{"04:30", 4, 30, true},
		{"00:00", 0, 0, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"-1:00", 0, 0, false},
		{"0400", 0, 0, false},
		{"", 0, 0, false},
		{"ab:cd", 0, 0, false},
	}
	for _, tt := range tests {
		h, m, err := ParseTimeOfDay(tt.in)
		if !tt.ok {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.hour, h, tt.in)
		require.Equal(t, tt.minute, m, tt.in)
	}
}

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2026, 8, 31, 3, 15, 0, 0, loc)

	// later the same day
	next := NextRun(now, 4, 0)
	require.Equal(t, time.Date(2026, 8, 31, 4, 0, 0, 0, loc), next)

	// already passed today, rolls over to tomorrow
	next = NextRun(now, 3, 0)
	require.Equal(t, time.Date(2026, 9, 1, 3, 0, 0, 0, loc), next)

	// exactly now also rolls over, runs are strictly in the future
	next = NextRun(now, 3, 15)
	require.Equal(t, time.Date(2026, 9, 1, 3, 15, 0, 0, loc), next)
}
