package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxEmail   = 254
	MaxName    = 100
	MaxMessage = 5000
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reEvent = regexp.MustCompile(`^[a-z][a-z0-9_.:-]{0,63}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > MaxEmail {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a person's display name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > MaxName || strings.ContainsAny(s, "\x00\r\n") {
		return "", false
	}
	return s, true
}

// Message allows an empty body; only the length is bounded.
func Message(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxMessage || strings.ContainsRune(s, 0) {
		return "", false
	}
	return s, true
}

// ID validates a simple resource identifier (product ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// EventName validates an analytics event name such as "hero.cta:click".
func EventName(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reEvent.MatchString(s)
}

// Limit parses a list size, falling back to def. Values outside [min, max]
// are rejected.
func Limit(s string, def, min, max int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}
