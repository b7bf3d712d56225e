package ops

import (
	"context"

	"github.com/hpungsan/vault/internal/record"
	"github.com/hpungsan/vault/internal/store"
)

// VerifyOutput contains the result of the Verify operation.
type VerifyOutput struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Parsed     bool   `json:"parsed"`
	ParseError string `json:"parse_error,omitempty"`
	Version    string `json:"version,omitempty"`
	Updated    string `json:"updated,omitempty"`
	Total      int    `json:"total"`

	// OK is true when the file is absent or parses with no record problems.
	OK bool `json:"ok"`

	Problems []RecordProblems `json:"problems"`
}

// RecordProblems lists the integrity problems of one stored record.
type RecordProblems struct {
	Index    int              `json:"index"`
	Username string           `json:"username"`
	Problems []record.Problem `json:"problems"`
}

// Verify reports on the health of the vault file without modifying it.
// Unlike Load it never hides a parse failure.
func Verify(ctx context.Context, st *store.Store) (*VerifyOutput, error) {
	if err := checkContext(ctx, "verify"); err != nil {
		return nil, err
	}

	snap, err := st.Inspect()
	if err != nil {
		return nil, err
	}

	out := &VerifyOutput{
		Path:     st.Path(),
		Exists:   snap.Exists,
		Parsed:   snap.ParseErr == nil,
		Version:  snap.Version,
		Updated:  snap.Updated,
		Total:    len(snap.Records),
		Problems: []RecordProblems{},
	}
	if snap.ParseErr != nil {
		out.ParseError = snap.ParseErr.Error()
		return out, nil
	}

	for i, r := range snap.Records {
		if problems := record.Check(r); len(problems) > 0 {
			out.Problems = append(out.Problems, RecordProblems{
				Index:    i,
				Username: r.Username,
				Problems: problems,
			})
		}
	}
	out.OK = len(out.Problems) == 0
	return out, nil
}
