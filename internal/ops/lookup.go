package ops

import (
	"context"

	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/store"
)

// LookupInput contains parameters for the Lookup operation.
type LookupInput struct {
	Username string
	Password string
}

// LookupOutput contains the result of the Lookup operation.
// Index and Entry are set only when Found is true.
type LookupOutput struct {
	Found bool   `json:"found"`
	Index *int   `json:"index,omitempty"`
	Entry *Entry `json:"entry,omitempty"`
}

// Lookup finds the first entry matching both username and password.
// No match is a normal result, not an error.
func Lookup(ctx context.Context, st *store.Store, input LookupInput) (*LookupOutput, error) {
	if input.Username == "" || input.Password == "" {
		return nil, errors.NewInvalidRequest("username and password are both required")
	}
	if err := checkContext(ctx, "lookup"); err != nil {
		return nil, err
	}

	rec, index, found, err := st.Lookup(input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if !found {
		return &LookupOutput{Found: false}, nil
	}

	return &LookupOutput{
		Found: true,
		Index: &index,
		Entry: &Entry{Index: index, Record: rec},
	}, nil
}
