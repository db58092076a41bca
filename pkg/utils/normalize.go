package utils

import (
	"errors"
	"math"
	"strings"
)

// NormalizeCode uppercases a user-typed coupon/affiliate code and strips
// surrounding whitespace. Codes are compared and stored in this form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ExtractEmailDomain(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", errors.New("invalid email format")
	}
	return parts[1], nil
}

// ToCents converts a currency amount to integer cents, rounding half up.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
