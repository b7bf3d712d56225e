package ops

import (
	"strings"

	"github.com/hpungsan/vault/internal/digest"
)

// HashAlgorithm names the digest stored in the vault.
const HashAlgorithm = "md5"

// HashInput contains parameters for the Hash operation.
type HashInput struct {
	Text string
}

// HashOutput contains the result of the Hash operation.
type HashOutput struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`

	// Grouped is Digest split into 8-char groups for reading aloud.
	Grouped string `json:"grouped"`
}

// Hash previews the digest the vault would store for Text.
// It touches no files.
func Hash(input HashInput) *HashOutput {
	sum := digest.Sum(input.Text)
	return &HashOutput{
		Algorithm: HashAlgorithm,
		Digest:    sum,
		Grouped:   groupDigest(sum),
	}
}

func groupDigest(sum string) string {
	groups := make([]string, 0, len(sum)/8)
	for i := 0; i < len(sum); i += 8 {
		groups = append(groups, sum[i:min(i+8, len(sum))])
	}
	return strings.Join(groups, "  ")
}
