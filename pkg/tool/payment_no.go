package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GeneratePaymentNo builds a human-readable payment number like
// PAY-20260831-7F3A2C1B. Uniqueness comes from the uuid portion; the date
// prefix only helps operators eyeball records.
func GeneratePaymentNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("PAY-%s-%s", now.Format("20060102"), suffix)
}
