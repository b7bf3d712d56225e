package ops

import (
	"context"

	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/store"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Username string // required, stored verbatim
	Password string // required, only its digest is stored
	Label    string // optional, defaults to record.DefaultLabel
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Index int   `json:"index"`
	Entry Entry `json:"entry"`
}

// Add stores a new credential at the end of the vault.
func Add(ctx context.Context, st *store.Store, input AddInput) (*AddOutput, error) {
	if input.Username == "" {
		return nil, errors.NewInvalidRequest("username cannot be empty")
	}
	if input.Password == "" {
		return nil, errors.NewInvalidRequest("password cannot be empty")
	}
	if err := checkContext(ctx, "add"); err != nil {
		return nil, err
	}

	rec, err := st.AddEntry(input.Username, input.Password, input.Label)
	if err != nil {
		return nil, err
	}

	// Position comes from a fresh read; another process may have written since.
	records, err := st.Load()
	if err != nil {
		return nil, err
	}
	index := len(records) - 1
	for i := len(records) - 1; i >= 0; i-- {
		if records[i] == rec {
			index = i
			break
		}
	}

	return &AddOutput{
		Index: index,
		Entry: Entry{Index: index, Record: rec},
	}, nil
}
