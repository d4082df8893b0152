package utils

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxArchiveSize    = 512 * 1024 * 1024 // 512MB - maximum session archive size
	MaxArchiveEntries = 100_000
)

// String length limits
const (
	MaxPathLength    = 4096
	MaxAppNameLength = 128
)

// Regular expressions for validation
var (
	// AppNamePattern allows alphanumeric, hyphens, underscores, and dots (org.example.app)
	AppNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Null bytes break archive entry names and file paths
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateAppName validates the name of an app contributing session files.
// App names become archive directories so they must be a single safe segment.
func ValidateAppName(name string) error {
	if err := ValidateString(name, "app name", 1, MaxAppNameLength, true); err != nil {
		return err
	}
	if !AppNamePattern.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("app name %q contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", name)
	}
	return nil
}

// ValidateSessionPath checks a filesystem path for a session archive
func ValidateSessionPath(path, ext string) error {
	if err := ValidateString(path, "path", 1, MaxPathLength, true); err != nil {
		return err
	}
	if ext != "" && !strings.EqualFold(filepath.Ext(path), ext) {
		return fmt.Errorf("path %q must have the %s extension", path, ext)
	}
	return nil
}

// ValidateURL checks a remote session location
func ValidateURL(raw string) error {
	if err := ValidateString(raw, "url", 1, MaxPathLength, true); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

// CleanRelPath cleans a slash-separated relative path and rejects any that
// would leave its root
func CleanRelPath(name string) (string, error) {
	if strings.HasPrefix(name, "/") || !IsSafeEntryName(name) {
		return "", fmt.Errorf("path %q is not a safe relative path", name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q is not a safe relative path", name)
	}
	return clean, nil
}

// IsSafeEntryName reports whether an archive entry name stays inside its root
// once extracted
func IsSafeEntryName(name string) bool {
	if name == "" || strings.Contains(name, "\x00") || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
