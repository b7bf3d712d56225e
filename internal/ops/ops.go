package ops

import (
	"context"

	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/record"
)

// Export file format
const (
	ExportSchemaVersion = "1.0"
	ExportExtension     = ".jsonl"
)

// Entry is a stored record together with its current position.
// Positions shift after a delete; callers re-list to get fresh indexes.
type Entry struct {
	Index int `json:"index"`
	record.Record
}

// newEntries pairs each record with its position.
func newEntries(records []record.Record) []Entry {
	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = Entry{Index: i, Record: r}
	}
	return entries
}

// checkContext returns CANCELLED if ctx is already done.
func checkContext(ctx context.Context, op string) error {
	if ctx == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	return nil
}
