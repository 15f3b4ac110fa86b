// Package corpus manages the on-disk face corpus: filename encoding,
// retention quotas, name mappings and per-image sidecar records.
//
// A stored image's filename is the only authoritative identity record:
// {person}_{YYYY-MM-DD}_{epochMillis}.jpg, with the person token holding
// everything up to the first date-shaped token.
package corpus

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var sanitizeRe = regexp.MustCompile(`[^\w\-.]`)

// imageExtensions lists the file extensions treated as corpus images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile reports whether a filename has a recognized image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// SanitizePerson prepares a person key for filename matching: strips
// surrounding quotes and replaces spaces with underscores.
func SanitizePerson(person string) string {
	person = strings.Trim(person, `"'`)
	return strings.ReplaceAll(person, " ", "_")
}

// BuildFilename encodes a stored image name from its identity parts.
// The result is sanitized to [\w\-.] so it is safe on any filesystem.
func BuildFilename(person, date string, epochMillis int64) string {
	name := fmt.Sprintf("%s_%s_%d.jpg", SanitizePerson(person), date, epochMillis)
	return sanitizeRe.ReplaceAllString(name, "_")
}

// isDateShaped reports whether a filename token looks like a date:
// at least 8 characters and either starting with 4 digits or containing
// a hyphen. This matches both YYYYMMDD and YYYY-MM-DD encodings.
func isDateShaped(token string) bool {
	if len(token) < 8 {
		return false
	}
	if strings.Contains(token, "-") {
		return true
	}
	for _, r := range token[:4] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PersonToken reconstructs the person key from a stored image path:
// every underscore-separated filename token up to (but excluding) the
// first date-shaped token.
func PersonToken(path string) string {
	filename := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	parts := strings.Split(filename, "_")
	var name []string
	for _, part := range parts {
		if isDateShaped(part) {
			break
		}
		name = append(name, part)
	}
	return strings.Join(name, "_")
}

// ParseFilename splits a stored image name into its person key and date
// token. ok is false when no date-shaped token is present, meaning the
// name does not follow the corpus scheme.
func ParseFilename(name string) (person, date string, ok bool) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	parts := strings.Split(base, "_")
	for i, part := range parts {
		if isDateShaped(part) {
			return strings.Join(parts[:i], "_"), part, true
		}
	}
	return "", "", false
}

// CleanDomain makes a domain string safe for use as a folder name:
// drops the port and replaces characters invalid in paths.
func CleanDomain(domain string) string {
	domain, _, _ = strings.Cut(domain, ":")
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, domain)
}
