package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	day := time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "INV-20260827-00001", FormatNumber(InvoicePrefix, day, 1))
	assert.Equal(t, "PAY-20260827-00042", FormatNumber(PayoutPrefix, day, 42))

	// sequences beyond the padding width are never truncated
	assert.Equal(t, "INV-20260827-123456", FormatNumber(InvoicePrefix, day, 123456))
}

func TestFormatNumberPattern(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-\d{8}-\d{5}$`)
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, seq := range []int64{1, 99, 99999} {
		assert.Regexp(t, pattern, FormatNumber(InvoicePrefix, day, seq))
	}
}
