package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds dashboard names and item ids.
const maxNameLength = 128

// ValidateName validates a dashboard name before it is used as a file name or
// a store key. It rejects names that could be used for path traversal.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "name contains invalid characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "name cannot start with '.'")
	}

	return nil
}

// ValidateItemID validates a layout item id. Ids are opaque, but they appear
// in URLs and log lines, so control characters are rejected.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSnapshot, "item id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidSnapshot, "item id too long (max %d characters)", maxNameLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSnapshot, "item id contains control characters")
		}
	}
	return nil
}
