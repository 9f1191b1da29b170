package auth

import (
	"regexp"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

var (
	upperRe          = regexp.MustCompile(`[A-Z]`)
	lowerRe          = regexp.MustCompile(`[a-z]`)
	digitOrSpecialRe = regexp.MustCompile(`[^A-Za-z]`)
	specialRe        = regexp.MustCompile(`[^A-Za-z0-9\s]`)
)

// ValidatePassword reports whether pw satisfies the password policy: at
// least MinPasswordLength characters with an uppercase letter, a lowercase
// letter, a digit or special character, and a special character.
func ValidatePassword(pw string) bool {
	return len([]rune(pw)) >= MinPasswordLength &&
		upperRe.MatchString(pw) &&
		lowerRe.MatchString(pw) &&
		digitOrSpecialRe.MatchString(pw) &&
		specialRe.MatchString(pw)
}
