package common

import "strings"

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// NormalizeCity canonicalizes a city name for case-insensitive comparison.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
