package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/vault/internal/atomicfile"
	"github.com/hpungsan/vault/internal/config"
	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/record"
	"github.com/hpungsan/vault/internal/store"
)

// ImportMode controls how imported records combine with the vault.
type ImportMode string

const (
	ImportModeAppend  ImportMode = "append"  // add after existing entries
	ImportModeReplace ImportMode = "replace" // discard existing entries
)

// maxImportLine bounds a single JSONL line.
const maxImportLine = 1 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: append
}

// ImportOutput contains the result of the Import operation.
// When Errors is non-empty nothing was written and Imported is 0.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Total    int           `json:"total"`
	Mode     ImportMode    `json:"mode"`
	ExportID string        `json:"export_id,omitempty"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one rejected line of the import file.
type ImportError struct {
	Line     int    `json:"line"`
	Username string `json:"username,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Import error codes
const (
	ImportCodeParseError    = "PARSE_ERROR"
	ImportCodeInvalidRecord = "INVALID_RECORD"
	ImportCodeMissingHeader = "MISSING_HEADER"
	ImportCodeBadVersion    = "UNSUPPORTED_VERSION"
	ImportCodeReadError     = "READ_ERROR"
)

// Import loads records from a JSONL backup written by Export.
//
// All lines are checked before anything is written. A record whose hashes
// are not digests of the vault's own algorithm is rejected, so an import
// never mixes hashing schemes in one vault. The merge is applied as a single
// save.
func Import(ctx context.Context, st *store.Store, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeAppend
	}
	if input.Mode != ImportModeAppend && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: append, replace")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg, st.Path()); err != nil {
		return nil, err
	}

	file, err := atomicfile.OpenNoFollowRead(input.Path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	parsed, err := parseExportFile(ctx, file)
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{
		Mode:     input.Mode,
		ExportID: parsed.exportID,
		Errors:   parsed.errors,
	}
	if len(parsed.errors) > 0 {
		if out.Total, err = countEntries(st); err != nil {
			return nil, err
		}
		return out, nil
	}

	if err := checkContext(ctx, "import"); err != nil {
		return nil, err
	}

	err = st.Update(func(records []record.Record) ([]record.Record, bool, error) {
		if input.Mode == ImportModeReplace {
			out.Total = len(parsed.records)
			return parsed.records, true, nil
		}
		next := append(records, parsed.records...)
		out.Total = len(next)
		return next, len(parsed.records) > 0, nil
	})
	if err != nil {
		return nil, err
	}

	out.Imported = len(parsed.records)
	out.Errors = []ImportError{}
	return out, nil
}

type parsedExport struct {
	exportID string
	records  []record.Record
	errors   []ImportError
}

// parseExportFile reads every line of r. The first non-blank line must be
// the export header.
func parseExportFile(ctx context.Context, r io.Reader) (*parsedExport, error) {
	out := &parsedExport{records: []record.Record{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	lineNum := 0
	sawHeader := false

	for scanner.Scan() {
		if err := checkContext(ctx, "import"); err != nil {
			return nil, err
		}
		lineNum++
		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		var rec record.ExportRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			out.errors = append(out.errors, ImportError{
				Line:    lineNum,
				Code:    ImportCodeParseError,
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if rec.VaultExport {
			if sawHeader {
				out.errors = append(out.errors, ImportError{
					Line:    lineNum,
					Code:    ImportCodeParseError,
					Message: "duplicate export header",
				})
				continue
			}
			sawHeader = true
			if rec.SchemaVersion != ExportSchemaVersion {
				out.errors = append(out.errors, ImportError{
					Line:    lineNum,
					Code:    ImportCodeBadVersion,
					Message: fmt.Sprintf("schema_version %q is not supported (want %q)", rec.SchemaVersion, ExportSchemaVersion),
				})
			}
			out.exportID = rec.ExportID
			continue
		}

		if !sawHeader {
			out.errors = append(out.errors, ImportError{
				Line:    lineNum,
				Code:    ImportCodeMissingHeader,
				Message: "record before export header; not a vault export file",
			})
			// One report is enough; later lines would all repeat it.
			sawHeader = true
		}

		entry := rec.ToRecord()
		if msg := invalidRecordMessage(entry); msg != "" {
			out.errors = append(out.errors, ImportError{
				Line:     lineNum,
				Username: entry.Username,
				Code:     ImportCodeInvalidRecord,
				Message:  msg,
			})
			continue
		}
		out.records = append(out.records, entry)
	}

	if err := scanner.Err(); err != nil {
		out.errors = append(out.errors, ImportError{
			Line:    lineNum + 1,
			Code:    ImportCodeReadError,
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	if !sawHeader {
		out.errors = append(out.errors, ImportError{
			Line:    1,
			Code:    ImportCodeMissingHeader,
			Message: "no export header found; not a vault export file",
		})
	}

	return out, nil
}

// invalidRecordMessage returns why r cannot be stored, or "".
func invalidRecordMessage(r record.Record) string {
	if r.Username == "" {
		return "username is empty"
	}
	if !record.ValidText(r.Username) || !record.ValidText(r.Label) || !record.ValidText(r.Created) {
		return "contains characters that cannot be stored"
	}
	problems := record.Check(r)
	if len(problems) == 0 {
		return ""
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Field + ": " + p.Message
	}
	return strings.Join(msgs, "; ")
}

func countEntries(st *store.Store) (int, error) {
	records, err := st.Load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
