package mcp

import "github.com/mark3labs/mcp-go/mcp"

var addToolDef = mcp.NewTool("vault_add",
	mcp.WithDescription("Store a credential. Only the MD5 digests of username and password are kept, plus the plaintext username. Duplicate usernames are allowed."),
	mcp.WithString("username", mcp.Required(), mcp.Description("Username, stored verbatim")),
	mcp.WithString("password", mcp.Required(), mcp.Description("Password; only its digest is stored")),
	mcp.WithString("label", mcp.Description("Free-form tag such as a site name (default: Default)")),
)

var deleteToolDef = mcp.NewTool("vault_delete",
	mcp.WithDescription("Delete the entry at a position from vault_list. Later entries shift down by one, so re-list before deleting again."),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based position of the entry")),
	mcp.WithBoolean("strict", mcp.Description("Fail with OUT_OF_RANGE instead of doing nothing when index is outside the vault")),
)

var listToolDef = mcp.NewTool("vault_list",
	mcp.WithDescription("List every entry in stored order with its position. Never returns passwords (they are not stored)."),
)

var lookupToolDef = mcp.NewTool("vault_lookup",
	mcp.WithDescription("Check a username/password pair. Returns the first matching entry, or found=false."),
	mcp.WithString("username", mcp.Required(), mcp.Description("Username to check")),
	mcp.WithString("password", mcp.Required(), mcp.Description("Password to check")),
)

var hashToolDef = mcp.NewTool("vault_hash",
	mcp.WithDescription("Preview the digest the vault would store for a piece of text. Reads and writes nothing."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Text to hash")),
)

var verifyToolDef = mcp.NewTool("vault_verify",
	mcp.WithDescription("Report whether the vault file exists and parses, and list entries whose hashes are inconsistent."),
)

var exportToolDef = mcp.NewTool("vault_export",
	mcp.WithDescription("Write all entries to a JSONL backup. Path must be directly in ~/.vault/exports or a configured allowed path."),
	mcp.WithString("path", mcp.Description("Destination .jsonl file (default: ~/.vault/exports/vault-<timestamp>.jsonl)")),
)

var importToolDef = mcp.NewTool("vault_import",
	mcp.WithDescription("Load entries from a JSONL backup made by vault_export. Any invalid line aborts the import with nothing written."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl file")),
	mcp.WithString("mode", mcp.Enum("append", "replace"), mcp.Description("append (default) adds after existing entries; replace discards them")),
)
