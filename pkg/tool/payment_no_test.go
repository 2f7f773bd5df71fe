package tool

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentNo(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	no := GeneratePaymentNo(now)
	require.Regexp(t, regexp.MustCompile(`^PAY-20260831-[0-9A-F]{8}$`), no)

	// suffix is random, two calls must not collide
	require.NotEqual(t, no, GeneratePaymentNo(now))
}
