package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// IsValidMobile reports whether s is exactly ten digits
func IsValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// NormalizeMobile strips everything but digits and keeps the last ten,
// so "+91 98765-43210" becomes "9876543210".
func NormalizeMobile(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// GenerateOTP returns a uniformly random six digit code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
