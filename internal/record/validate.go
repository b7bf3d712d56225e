package record

import (
	"fmt"
	"unicode/utf8"

	"github.com/hpungsan/vault/internal/digest"
)

// Problem describes one integrity issue found on a record.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Check returns the integrity problems of r, or nil if it is consistent.
// A record is consistent when both hash fields have the digest shape and
// UsernameHash is the digest of Username. Hashes computed with any other
// function or encoding fail this check.
func Check(r Record) []Problem {
	var problems []Problem

	if !digest.Valid(r.UsernameHash) {
		problems = append(problems, Problem{
			Field:   "username_hash",
			Message: fmt.Sprintf("not a %d-char lowercase hex digest", digest.Size),
		})
	} else if r.UsernameHash != digest.Sum(r.Username) {
		problems = append(problems, Problem{
			Field:   "username_hash",
			Message: "does not match digest of username",
		})
	}

	if !digest.Valid(r.PasswordHash) {
		problems = append(problems, Problem{
			Field:   "password_hash",
			Message: fmt.Sprintf("not a %d-char lowercase hex digest", digest.Size),
		})
	}

	return problems
}

// ValidText reports whether s can be stored in the vault file and read back
// unchanged: valid UTF-8 made only of characters XML 1.0 allows.
func ValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return false
		}
	}
	return true
}

// isXMLChar reports whether r is allowed by the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
