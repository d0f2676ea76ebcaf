package utils

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	// Remove any whitespace and check for empty strings
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	// Convert string to decimal
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

// NewObjectKey builds the storage key for an uploaded vendor file:
// `{uuid}-{original filename}`. The embedded uuid means two concurrent
// uploads never collide on key, and identical bytes get distinct keys.
func NewObjectKey(filename string) string {
	return uuid.NewString() + "-" + filename
}

// FileTypeFromName derives the file type from the suffix after the last dot.
// No dot means no type (empty string); case is preserved as uploaded.
func FileTypeFromName(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return filename[idx+1:]
}
