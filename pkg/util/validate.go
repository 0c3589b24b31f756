package util

import "regexp"

var (
	pincodeRegex = regexp.MustCompile(`^\d{6}$`)
	mobileRegex  = regexp.MustCompile(`^\d{10}$`)
)

// IsValidPincode reports whether s is exactly 6 ASCII digits
func IsValidPincode(s string) bool {
	return pincodeRegex.MatchString(s)
}

// IsValidMobile reports whether s is exactly 10 ASCII digits
func IsValidMobile(s string) bool {
	return mobileRegex.MatchString(s)
}
