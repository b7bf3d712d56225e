// Package digest implements the one-way hash applied to usernames and
// passwords before they are stored.
//
// The algorithm is unsalted MD5 over the UTF-8 bytes of the input, rendered
// as 32 lowercase hex characters. It exists to stay compatible with vault
// files written by earlier versions of the tool. It offers no protection
// against brute force or precomputed tables and must not be reused as a
// credential-protection scheme elsewhere.
package digest

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
)

// Size is the length of a digest string in characters.
const Size = md5.Size * 2

// Sum returns the digest of text.
// Go strings are byte sequences; text is hashed as-is, which is UTF-8 for
// any input that came from a terminal, a JSON request, or the vault file.
func Sum(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s has the shape of a digest: Size lowercase hex chars.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Equal compares two digests in constant time.
// Lookup uses plain equality; a hardened build would swap this in.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
