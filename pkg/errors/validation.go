package errors

import (
	"strings"
	"unicode"
)

// ValidateEntityID validates an entity identifier supplied from outside the
// process (URL path, query parameter, CLI argument).
//
// Identifiers in curated datasets are free-form (uuids, prefecture names,
// single kana), so only structural problems are rejected:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 bytes
func ValidateEntityID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "entity id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "entity id too long (max 256 bytes)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "entity id contains invalid control characters")
		}
	}

	return nil
}

// ValidateFilePath validates an output or input path given on the command line.
func ValidateFilePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	if len(path) > 1024 {
		return New(ErrCodeInvalidInput, "path too long (max 1024 characters)")
	}

	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidInput, "path contains null byte")
	}

	return nil
}
