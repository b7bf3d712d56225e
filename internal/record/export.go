package record

// ExportRecord represents one line of a JSONL export file.
// The header line sets VaultExport and the header fields; every other line
// carries a record.
type ExportRecord struct {
	// Header detection field - true only for header line
	VaultExport bool `json:"_vault_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`
	ExportID      string `json:"export_id,omitempty"`

	// Record fields
	Username     string `json:"username"`
	UsernameHash string `json:"username_hash"`
	PasswordHash string `json:"password_hash"`
	Created      string `json:"created"`
	Label        string `json:"label"`
}

// ToRecord converts an ExportRecord to a Record.
// Hashes are carried over as exported; callers run Check before storing.
func (e *ExportRecord) ToRecord() Record {
	return Record{
		Username:     e.Username,
		UsernameHash: e.UsernameHash,
		PasswordHash: e.PasswordHash,
		Created:      e.Created,
		Label:        e.Label,
	}
}

// ToExportRecord converts a Record to an ExportRecord for export.
func ToExportRecord(r Record) *ExportRecord {
	return &ExportRecord{
		Username:     r.Username,
		UsernameHash: r.UsernameHash,
		PasswordHash: r.PasswordHash,
		Created:      r.Created,
		Label:        r.Label,
	}
}
