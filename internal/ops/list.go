package ops

import (
	"context"

	"github.com/hpungsan/vault/internal/store"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// List returns every entry in stored order.
func List(ctx context.Context, st *store.Store) (*ListOutput, error) {
	if err := checkContext(ctx, "list"); err != nil {
		return nil, err
	}

	records, err := st.Load()
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Entries: newEntries(records),
		Total:   len(records),
	}, nil
}
