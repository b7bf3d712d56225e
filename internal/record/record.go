package record

import (
	"time"

	"github.com/hpungsan/vault/internal/digest"
)

// DefaultLabel is applied when an entry is added without a label.
const DefaultLabel = "Default"

// CreatedLayout is the format of Record.Created for entries written by this tool.
const CreatedLayout = "2006-01-02 15:04:05"

// Record is one stored credential.
// The plaintext password is never part of a Record.
type Record struct {
	// Username is the plaintext username, stored verbatim
	Username string `json:"username"`

	// UsernameHash is digest.Sum(Username)
	UsernameHash string `json:"username_hash"`

	// PasswordHash is digest.Sum(password)
	PasswordHash string `json:"password_hash"`

	// Created is set once at creation and round-trips as written.
	// Kept as text so values from older files survive unchanged.
	Created string `json:"created"`

	// Label is a free-form tag, DefaultLabel when empty at creation
	Label string `json:"label"`
}

// New builds a Record, hashing username and password.
func New(username, password, label string, now time.Time) Record {
	if label == "" {
		label = DefaultLabel
	}
	return Record{
		Username:     username,
		UsernameHash: digest.Sum(username),
		PasswordHash: digest.Sum(password),
		Created:      now.Format(CreatedLayout),
		Label:        label,
	}
}

// Matches reports whether the record holds both hashes.
func (r Record) Matches(usernameHash, passwordHash string) bool {
	return r.UsernameHash == usernameHash && r.PasswordHash == passwordHash
}
