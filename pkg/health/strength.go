// Package health scores password strength and aggregates security
// statistics over a credential set. It is read-only: it consumes decrypted
// credentials and never touches storage.
package health

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strength classifies a password into three buckets.
type Strength int

const (
	Weak Strength = iota
	Medium
	Strong
)

func (s Strength) String() string {
	switch s {
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	default:
		return "weak"
	}
}

// symbols is the punctuation set that counts toward the score.
const symbols = "!@#$%^&*()-_=+[]{};:,.<>?/\\|~`"

// Score rates a password 0 to 6: one point each for length of at least 8,
// length of at least 12, an uppercase letter, a lowercase letter, a digit,
// and a symbol. Length is counted in characters, not bytes.
func Score(password string) int {
	if password == "" {
		return 0
	}
	score := 0
	length := utf8.RuneCountInString(password)
	if length >= 8 {
		score++
	}
	if length >= 12 {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsUpper) {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsLower) {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsDigit) {
		score++
	}
	if strings.ContainsAny(password, symbols) {
		score++
	}
	return score
}

// Classify maps a score to a Strength: 5 and up is Strong, 3 and up is
// Medium, anything less is Weak. An empty password is always Weak.
func Classify(password string) Strength {
	score := Score(password)
	switch {
	case score >= 5:
		return Strong
	case score >= 3:
		return Medium
	default:
		return Weak
	}
}

// Suggestions returns human-readable improvements for a password, or a
// confirmation when it is already strong.
func Suggestions(password string) []string {
	var out []string
	length := utf8.RuneCountInString(password)
	if length < 8 {
		out = append(out, "Increase length to at least 8 characters.")
	} else if length < 12 {
		out = append(out, "Consider using 12+ characters for better security.")
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		out = append(out, "Add uppercase letters.")
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		out = append(out, "Add lowercase letters.")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		out = append(out, "Add digits.")
	}
	if !strings.ContainsAny(password, symbols) {
		out = append(out, "Add symbols like !@#$% to increase entropy.")
	}
	if Classify(password) == Strong {
		out = append(out, "Looks good: your password is strong.")
	}
	return out
}
