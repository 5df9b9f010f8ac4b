package util

import (
	"errors"
	"strings"
)

var ErrInvalidFileName = errors.New("invalid file name")

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName turns a resume title into a single path element. Traversal
// patterns are rejected rather than rewritten.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Join(strings.Fields(name), " ")
	s = unsafeFileChars.Replace(s)
	s = strings.Trim(s, ". ")
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
