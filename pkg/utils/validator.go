package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	userIDFormat = regexp.MustCompile(`^[A-Za-z0-9._@\-]{1,128}$`)
)

// ValidateUserID checks a viewer id. The id becomes part of alert keys, so the
// key separator is not allowed.
func ValidateUserID(id string) error {
	if !userIDFormat.MatchString(id) {
		return fmt.Errorf("invalid user id: %q", id)
	}
	return nil
}

// NormalizeRole lowercases a role name and checks it against the known roles
func NormalizeRole(role string, known ...string) (string, error) {
	r := strings.ToLower(strings.TrimSpace(role))
	for _, k := range known {
		if r == k {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", role)
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
