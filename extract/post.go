package extract

import (
	"regexp"
	"strings"
)

// Post transforms a trimmed, non-empty text. Returning "" rejects the match
// and lets the next node or strategy try.
type Post func(string) string

// OneOf accepts text equal to one of words.
func OneOf(words ...string) Post {
	return func(s string) string {
		for _, w := range words {
			if s == w {
				return w
			}
		}
		return ""
	}
}

// OneOfFold accepts text equal to one of words ignoring case and returns the
// canonical word.
func OneOfFold(words ...string) Post {
	return func(s string) string {
		for _, w := range words {
			if strings.EqualFold(s, w) {
				return w
			}
		}
		return ""
	}
}

// Has accepts text containing any of subs.
func Has(subs ...string) Post {
	return func(s string) string {
		if containsAny(s, subs, false) {
			return s
		}
		return ""
	}
}

// HasAll accepts text that passes every group: each group needs one hit.
func HasAll(groups ...[]string) Post {
	return func(s string) string {
		for _, g := range groups {
			if !containsAny(s, g, false) {
				return ""
			}
		}
		return s
	}
}

// Lacks rejects text containing any of subs.
func Lacks(subs ...string) Post {
	return func(s string) string {
		if containsAny(s, subs, false) {
			return ""
		}
		return s
	}
}

// ShorterThan rejects text of n runes or more.
func ShorterThan(n int) Post {
	return func(s string) string {
		if len([]rune(s)) >= n {
			return ""
		}
		return s
	}
}

// LongerThan rejects text of n runes or fewer.
func LongerThan(n int) Post {
	return func(s string) string {
		if len([]rune(s)) <= n {
			return ""
		}
		return s
	}
}

// Except rejects text equal to any of values.
func Except(values ...string) Post {
	return func(s string) string {
		for _, v := range values {
			if v != "" && s == v {
				return ""
			}
		}
		return s
	}
}

// Matches accepts text in which re finds a match, keeping the whole text.
func Matches(re *regexp.Regexp) Post {
	return func(s string) string {
		if re.MatchString(s) {
			return s
		}
		return ""
	}
}

// TrimPrefix removes prefix, e.g. "mailto:" from an href.
func TrimPrefix(prefix string) Post {
	return func(s string) string {
		return strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
}
