package ops

import (
	"context"

	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Index int

	// Strict turns an out-of-range index into OUT_OF_RANGE instead of a no-op.
	Strict bool
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted   bool `json:"deleted"`
	Index     int  `json:"index"`
	Remaining int  `json:"remaining"`
}

// Delete removes the entry at Index.
func Delete(ctx context.Context, st *store.Store, input DeleteInput) (*DeleteOutput, error) {
	if err := checkContext(ctx, "delete"); err != nil {
		return nil, err
	}

	deleted, err := st.DeleteEntry(input.Index)
	if err != nil {
		return nil, err
	}

	records, err := st.Load()
	if err != nil {
		return nil, err
	}

	if !deleted && input.Strict {
		return nil, errors.NewOutOfRange(input.Index, len(records))
	}

	return &DeleteOutput{
		Deleted:   deleted,
		Index:     input.Index,
		Remaining: len(records),
	}, nil
}
