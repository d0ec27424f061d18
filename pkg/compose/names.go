package compose

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var invalidProjectChars = regexp.MustCompile(`[^a-z0-9_-]`)

// SanitizeProjectName lowercases name and strips characters docker compose
// rejects in project names.
func SanitizeProjectName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidProjectChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "-_")
}

// UniqueProjectName returns prefix plus a random suffix, so concurrent runs
// of the same suite do not share containers.
func UniqueProjectName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	prefix = SanitizeProjectName(prefix)
	if prefix == "" {
		return "cosy-" + suffix
	}
	return prefix + "-" + suffix
}
