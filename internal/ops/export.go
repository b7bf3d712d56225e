package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/vault/internal/atomicfile"
	"github.com/hpungsan/vault/internal/config"
	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/record"
	"github.com/hpungsan/vault/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.vault/exports/vault-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
	ExportID   string `json:"export_id"`
}

// ExportHeader represents the header line in a JSONL export file.
type ExportHeader struct {
	VaultExport   bool   `json:"_vault_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
	ExportID      string `json:"export_id"`
}

// Export writes every entry to a JSONL backup file.
// The vault file itself is not modified. An unparsable vault is a
// PARSE_FAILURE in either parse mode; there is nothing to back up.
func Export(ctx context.Context, st *store.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(now)
		if err != nil {
			return nil, err
		}
	}

	if err := ValidatePath(exportPath, PathCheckWrite, cfg, st.Path()); err != nil {
		return nil, err
	}

	snap, err := st.Inspect()
	if err != nil {
		return nil, err
	}
	if snap.ParseErr != nil {
		return nil, errors.NewParseFailure(st.Path(), snap.ParseErr)
	}
	records := snap.Records

	exportID := newExportID(now)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	header := ExportHeader{
		VaultExport:   true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
		ExportID:      exportID,
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	for _, r := range records {
		if err := checkContext(ctx, "export"); err != nil {
			return nil, err
		}
		if err := enc.Encode(record.ToExportRecord(r)); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := atomicfile.WriteFile(exportPath, buf.Bytes(), 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(records),
		ExportedAt: exportedAt,
		ExportID:   exportID,
	}, nil
}

// defaultExportPath generates the default export path.
// Format: ~/.vault/exports/vault-<timestamp>.jsonl
func defaultExportPath(now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("vault-%s%s", now.Format("2006-01-02T150405"), ExportExtension)
	return filepath.Join(dir, filename), nil
}

// newExportID returns a ULID identifying one export run.
func newExportID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
