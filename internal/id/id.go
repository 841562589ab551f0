package id

import (
	"fmt"
	"strings"
)

// FormatLink returns a transaction link like "seb-2024010500123".
func FormatLink(bank, reference string) string {
	reference = strings.Map(linkRune, strings.TrimSpace(reference))
	if reference == "" {
		return ""
	}
	return strings.ToLower(bank) + "-" + reference
}

// ParseLink splits "seb-2024010500123" into bank and reference.
func ParseLink(link string) (bank, reference string, err error) {
	link = strings.TrimPrefix(link, "^")
	bank, reference, ok := strings.Cut(link, "-")
	if !ok || bank == "" || reference == "" {
		return "", "", fmt.Errorf("invalid link format: %q", link)
	}
	return bank, reference, nil
}

// linkRune keeps characters Beancount accepts in a link.
func linkRune(r rune) rune {
	if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' ||
		r == '-' || r == '_' || r == '/' || r == '.' {
		return r
	}
	return -1
}
