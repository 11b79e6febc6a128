package utils

import "unicode/utf8"

// Ellipsis marks text cut by Truncate.
const Ellipsis = "..."

// Truncate returns the first n characters of s, followed by Ellipsis when s was longer.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + Ellipsis
}

// CharCount counts characters rather than bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
