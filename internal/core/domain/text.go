package domain

import "unicode/utf8"

// Truncate returns the first n characters of s. Lengths are counted in
// runes so multi-byte text is never split mid-character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// CharLen returns the number of characters in s.
func CharLen(s string) int {
	return utf8.RuneCountInString(s)
}
